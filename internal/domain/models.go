package domain

import "time"

// Property is a listing record as the REST API returns it.
type Property struct {
	ID           int64      `json:"id"`
	MainImage    string     `json:"main_image"`
	Images       []string   `json:"images"`
	Description  string     `json:"description"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	Location     string     `json:"location,omitempty"`
	Area         float64    `json:"area"`
	Price        float64    `json:"price"`
	Owner        string     `json:"owner"`
	OwnerPhone   string     `json:"owner_phone"`
	Sold         bool       `json:"sold"`
	Rented       bool       `json:"rented"`
	Show         bool       `json:"show"`
	IsForRent    bool       `json:"isForRent"`
	PropertyType string     `json:"property_type,omitempty"`
	Amenities    string     `json:"amenities,omitempty"`
	Features     string     `json:"features,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Created returns the creation time, or the zero Unix epoch when the API omitted it.
func (p Property) Created() time.Time {
	if p.CreatedAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return *p.CreatedAt
}

// PropertyInput is the admin create/update payload. Images are URLs that were
// already uploaded or typed in manually.
type PropertyInput struct {
	MainImage    string   `json:"main_image" validate:"omitempty,url"`
	Images       []string `json:"images" validate:"dive,url"`
	Description  string   `json:"description" validate:"required,min=10"`
	Address      string   `json:"address" validate:"required"`
	City         string   `json:"city" validate:"required"`
	State        string   `json:"state" validate:"required"`
	Location     string   `json:"location,omitempty"`
	Area         float64  `json:"area" validate:"gte=0"`
	Price        float64  `json:"price" validate:"gt=0"`
	Owner        string   `json:"owner" validate:"required"`
	OwnerPhone   string   `json:"owner_phone" validate:"required,phone"`
	Sold         bool     `json:"sold"`
	Rented       bool     `json:"rented"`
	Show         bool     `json:"show"`
	IsForRent    bool     `json:"isForRent"`
	PropertyType string   `json:"property_type,omitempty"`
	Amenities    string   `json:"amenities,omitempty"`
	Features     string   `json:"features,omitempty"`
}

// Apply copies the editable fields of in onto p.
func (in PropertyInput) Apply(p Property) Property {
	p.MainImage = in.MainImage
	p.Images = append([]string(nil), in.Images...)
	p.Description = in.Description
	p.Address = in.Address
	p.City = in.City
	p.State = in.State
	p.Location = in.Location
	p.Area = in.Area
	p.Price = in.Price
	p.Owner = in.Owner
	p.OwnerPhone = in.OwnerPhone
	p.Sold = in.Sold
	p.Rented = in.Rented
	p.Show = in.Show
	p.IsForRent = in.IsForRent
	p.PropertyType = in.PropertyType
	p.Amenities = in.Amenities
	p.Features = in.Features
	return p
}

// InputFrom builds an editable copy of an existing record.
func InputFrom(p Property) PropertyInput {
	return PropertyInput{
		MainImage:    p.MainImage,
		Images:       append([]string(nil), p.Images...),
		Description:  p.Description,
		Address:      p.Address,
		City:         p.City,
		State:        p.State,
		Location:     p.Location,
		Area:         p.Area,
		Price:        p.Price,
		Owner:        p.Owner,
		OwnerPhone:   p.OwnerPhone,
		Sold:         p.Sold,
		Rented:       p.Rented,
		Show:         p.Show,
		IsForRent:    p.IsForRent,
		PropertyType: p.PropertyType,
		Amenities:    p.Amenities,
		Features:     p.Features,
	}
}

// PropertyRequest is a visitor's viewing inquiry.
type PropertyRequest struct {
	ID                  string        `json:"id"`
	PropertyID          int64         `json:"propertyId"`
	Title               string        `json:"title,omitempty"`
	FirstName           string        `json:"firstName"`
	LastName            string        `json:"lastName"`
	Email               string        `json:"email"`
	PhoneNumber         string        `json:"phoneNumber"`
	PreferredDate       string        `json:"preferredDate"`
	PreferredTime       string        `json:"preferredTime"`
	AdditionalInfo      string        `json:"additionalInfo,omitempty"`
	SpecialRequirements string        `json:"specialRequirements,omitempty"`
	Status              RequestStatus `json:"status"`
	CreatedAt           *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time    `json:"updatedAt,omitempty"`
}

// ViewingRequestInput is what a visitor submits from the property page.
type ViewingRequestInput struct {
	PropertyID          int64  `json:"propertyId" validate:"required,gt=0"`
	Title               string `json:"title,omitempty" validate:"omitempty,oneof=Mr Mrs Ms Miss Dr Prof"`
	FirstName           string `json:"firstName" validate:"required,max=60"`
	LastName            string `json:"lastName" validate:"required,max=60"`
	Email               string `json:"email" validate:"required,email"`
	PhoneNumber         string `json:"phoneNumber" validate:"required,phone"`
	PreferredDate       string `json:"preferredDate" validate:"required,date"`
	PreferredTime       string `json:"preferredTime" validate:"required,clock"`
	AdditionalInfo      string `json:"additionalInfo,omitempty" validate:"max=1000"`
	SpecialRequirements string `json:"specialRequirements,omitempty" validate:"max=1000"`
}

// PropertyReview is a visitor review, moderated by an admin.
type PropertyReview struct {
	ID            string       `json:"id"`
	PropertyID    int64        `json:"propertyId"`
	ReviewerName  string       `json:"reviewerName"`
	ReviewerEmail string       `json:"reviewerEmail"`
	Rating        int          `json:"rating"`
	Comment       string       `json:"comment"`
	Status        ReviewStatus `json:"status"`
	AdminReply    string       `json:"adminReply,omitempty"`
	CreatedAt     *time.Time   `json:"createdAt,omitempty"`
}

// ReviewInput is what a visitor submits from the property page.
type ReviewInput struct {
	PropertyID    int64  `json:"propertyId" validate:"required,gt=0"`
	ReviewerName  string `json:"reviewerName" validate:"required,max=80"`
	ReviewerEmail string `json:"reviewerEmail" validate:"required,email"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"required,min=10,max=2000"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Role is the role claim carried by the access token.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is derived from a decoded token; it is never fetched.
type User struct {
	Sub   string `json:"sub"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

// IsAdmin reports whether u holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AnalyticsSummary is the dashboard aggregate.
type AnalyticsSummary struct {
	TotalProperties   int     `json:"totalProperties"`
	VisibleProperties int     `json:"visibleProperties"`
	ForSale           int     `json:"forSale"`
	ForRent           int     `json:"forRent"`
	Sold              int     `json:"sold"`
	Rented            int     `json:"rented"`
	TotalRequests     int     `json:"totalRequests"`
	PendingRequests   int     `json:"pendingRequests"`
	TotalReviews      int     `json:"totalReviews"`
	PendingReviews    int     `json:"pendingReviews"`
	AverageRating     float64 `json:"averageRating"`
}
