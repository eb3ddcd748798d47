package user

import "github.com/deppfellow/quiz-api/internal/validation"

// UpdateProfileRequest changes the caller's own profile. Nil fields are left
// untouched; phone_no and dial_code travel together.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=200"`
	PhoneNo  *string `json:"phone_no" validate:"omitempty,numeric,min=6,max=15"`
	DialCode *string `json:"dial_code" validate:"omitempty,startswith=+,max=5"`
}

func (r *UpdateProfileRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	if (r.PhoneNo == nil) != (r.DialCode == nil) {
		return validation.CustomValidationErrors{
			{Field: "phone_no", Message: "phone_no and dial_code must be provided together"},
		}
	}

	return nil
}
