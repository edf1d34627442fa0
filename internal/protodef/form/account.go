package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	ErrEmailMsg    = "邮箱格式不正确"
	ErrPasswordMsg = "密码长度需在6到64之间"
)

// SignUpOrInForm 注册或登录的参数。邮箱不存在时自动注册。
type SignUpOrInForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Nickname string `form:"nickname" json:"nickname"`
}

func (f *SignUpOrInForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Email, validation.Required, is.Email.Error(ErrEmailMsg)),
		validation.Field(&f.Password, validation.Required,
			validation.Length(6, 64).Error(ErrPasswordMsg)),
	)
}

// UpdateProfileForm 更新个人信息的参数。
type UpdateProfileForm struct {
	Nickname          string `form:"nickname" json:"nickname"`
	EmailNotification *bool  `form:"emailNotification" json:"emailNotification"`
}

func (f *UpdateProfileForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Nickname, validation.Length(0, 50)),
	)
}
