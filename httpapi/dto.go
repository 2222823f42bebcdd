package httpapi

import (
	"time"

	"movemarket/auth"
	"movemarket/bid"
	"movemarket/livefeed"
	"movemarket/request"
)

// The DTOs below are the wire contract: field names and shapes follow the
// entity attributes exactly, so clients of the original system keep working.

type userDTO struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Role               auth.Role `json:"user_type"`
	IsActive           bool      `json:"is_active"`
	IsEmailVerified    bool      `json:"is_email_verified"`
	IsPhoneVerified    bool      `json:"is_phone_verified"`
	IsApproved         bool      `json:"is_approved"`
	CompanyName        *string   `json:"company_name,omitempty"`
	CompanyDescription *string   `json:"company_description,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toUserDTO(u auth.User) userDTO {
	return userDTO{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		Role:               u.Role,
		IsActive:           u.IsActive,
		IsEmailVerified:    u.IsEmailVerified,
		IsPhoneVerified:    u.IsPhoneVerified,
		IsApproved:         u.IsApproved,
		CompanyName:        u.CompanyName,
		CompanyDescription: u.CompanyDescription,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

type requestDTO struct {
	ID                  string         `json:"id"`
	CustomerID          string         `json:"customer_id"`
	CustomerName        string         `json:"customer_name"`
	FromLocation        string         `json:"from_location"`
	ToLocation          string         `json:"to_location"`
	FromFloor           int            `json:"from_floor"`
	ToFloor             int            `json:"to_floor"`
	HasElevatorFrom     bool           `json:"has_elevator_from"`
	HasElevatorTo       bool           `json:"has_elevator_to"`
	NeedsMobileElevator bool           `json:"needs_mobile_elevator"`
	TruckDistance       string         `json:"truck_distance"`
	PackingService      bool           `json:"packing_service"`
	MovingDate          time.Time      `json:"moving_date"`
	Description         *string        `json:"description,omitempty"`
	Status              request.Status `json:"status"`
	SelectedMoverID     *string        `json:"selected_mover_id,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

func toRequestDTO(r request.MovingRequest) requestDTO {
	return requestDTO{
		ID:                  r.ID,
		CustomerID:          r.CustomerID,
		CustomerName:        r.CustomerName,
		FromLocation:        r.FromLocation,
		ToLocation:          r.ToLocation,
		FromFloor:           r.FromFloor,
		ToFloor:             r.ToFloor,
		HasElevatorFrom:     r.HasElevatorFrom,
		HasElevatorTo:       r.HasElevatorTo,
		NeedsMobileElevator: r.NeedsMobileElevator,
		TruckDistance:       r.TruckDistance,
		PackingService:      r.PackingService,
		MovingDate:          r.MovingDate,
		Description:         r.Description,
		Status:              r.Status,
		SelectedMoverID:     r.SelectedMoverID,
		CreatedAt:           r.CreatedAt,
	}
}

func toRequestDTOs(list []request.MovingRequest) []requestDTO {
	out := make([]requestDTO, len(list))
	for i, r := range list {
		out[i] = toRequestDTO(r)
	}
	return out
}

type bidDTO struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"request_id"`
	MoverID     string     `json:"mover_id"`
	MoverName   string     `json:"mover_name"`
	CompanyName string     `json:"company_name"`
	Phone       string     `json:"phone"`
	Price       float64    `json:"price"`
	Message     *string    `json:"message,omitempty"`
	Status      bid.Status `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toBidDTO(b bid.Bid) bidDTO {
	return bidDTO{
		ID:          b.ID,
		RequestID:   b.RequestID,
		MoverID:     b.MoverID,
		MoverName:   b.MoverName,
		CompanyName: b.CompanyName,
		Phone:       b.Phone,
		Price:       b.Price,
		Message:     b.Message,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}
}

func toBidDTOs(list []bid.Bid) []bidDTO {
	out := make([]bidDTO, len(list))
	for i, b := range list {
		out[i] = toBidDTO(b)
	}
	return out
}

type postDTO struct {
	ID           string    `json:"id"`
	MoverID      string    `json:"mover_id"`
	MoverName    string    `json:"mover_name"`
	CompanyName  *string   `json:"company_name,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Title        string    `json:"title"`
	FromLocation *string   `json:"from_location,omitempty"`
	ToLocation   *string   `json:"to_location,omitempty"`
	When         *string   `json:"when,omitempty"`
	Vehicle      *string   `json:"vehicle,omitempty"`
	PriceNote    *string   `json:"price_note,omitempty"`
	Extra        *string   `json:"extra,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toPostDTO(p livefeed.Post) postDTO {
	return postDTO{
		ID:           p.ID,
		MoverID:      p.MoverID,
		MoverName:    p.MoverName,
		CompanyName:  p.CompanyName,
		Phone:        p.Phone,
		Title:        p.Title,
		FromLocation: p.FromLocation,
		ToLocation:   p.ToLocation,
		When:         p.When,
		Vehicle:      p.Vehicle,
		PriceNote:    p.PriceNote,
		Extra:        p.Extra,
		CreatedAt:    p.CreatedAt,
	}
}

func toPostDTOs(list []livefeed.Post) []postDTO {
	out := make([]postDTO, len(list))
	for i, p := range list {
		out[i] = toPostDTO(p)
	}
	return out
}
