package validation

// ListingForm is the listing-creation form as submitted.
// Image fields describe the uploaded file; the body is carried separately.
// Only raster formats are accepted since images are served from the app origin.
// Price is stored to the cent, so anything under 0.01 is rejected here.
type ListingForm struct {
	Title         string  `json:"title" validate:"required,min=3"`
	Description   string  `json:"description" validate:"required,min=10"`
	Category      string  `json:"category" validate:"required,category"`
	Condition     string  `json:"condition" validate:"required,condition"`
	Price         float64 `json:"price" validate:"gte=0.01,lt=100000000"`
	ImageSize     int64   `json:"image" validate:"gt=0"`
	ImageType     string  `json:"imageType" validate:"required,oneof=image/png image/jpeg image/gif image/webp"`
	ImageFilename string  `json:"-"`
}

// SignUpForm is the account creation form.
type SignUpForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
