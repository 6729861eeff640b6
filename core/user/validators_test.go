package user

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/TanishSen/Learn-Scope/core"
)

func TestNewUserValidation(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	valid := NewUser{Username: "alice", Email: "alice@example.com", Password: "s3cure-Pass", PasswordConfirm: "s3cure-Pass"}
	tests := []struct {
		name     string
		mutate   func(nu *NewUser)
		wantErrs map[string]string
	}{
		{name: "valid", mutate: func(nu *NewUser) {}},
		{name: "no confirmation", mutate: func(nu *NewUser) { nu.PasswordConfirm = "" }},
		{name: "username with symbols", mutate: func(nu *NewUser) { nu.Username = "Mary.Jane" }},
		{name: "numeric password", mutate: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "123456", "123456" }},
		{name: "password similar to username", mutate: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "alice123", "alice123" }},
		{
			name:     "short username",
			mutate:   func(nu *NewUser) { nu.Username = "al" },
			wantErrs: map[string]string{"username": "username must be at least 3 characters in length"},
		},
		{
			name:     "invalid email",
			mutate:   func(nu *NewUser) { nu.Email = "alice" },
			wantErrs: map[string]string{"email": "email must be a valid email address"},
		},
		{
			name:     "short password",
			mutate:   func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "a1b2", "a1b2" },
			wantErrs: map[string]string{"password": pwdMinLenText},
		},
		{
			name:     "mismatched confirmation",
			mutate:   func(nu *NewUser) { nu.PasswordConfirm = "s3cure-Pasz" },
			wantErrs: map[string]string{"confirmPassword": "confirmPassword must be equal to Password"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid
			tt.mutate(&nu)
			err := validate.Struct(nu)
			if tt.wantErrs == nil {
				if err != nil {
					t.Fatalf("validate.Struct() error = %v", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("validate.Struct() error = %v, want validator.ValidationErrors", err)
			}
			got := make(map[string]string, len(vErrs))
			for _, vErr := range vErrs {
				got[vErr.Field()] = vErr.Translate(translator)
			}
			for field, want := range tt.wantErrs {
				if got[field] != want {
					t.Errorf("%s error = %q, want %q", field, got[field], want)
				}
			}
		})
	}
}

func TestResetPasswordValidation(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	tests := []struct {
		name    string
		uname   string
		pwd     string
		wantErr string
	}{
		{name: "valid", uname: "alice", pwd: "s3cure-Pass"},
		{name: "short", uname: "alice", pwd: "a1b2", wantErr: pwdMinLenText},
		{name: "whitespace", uname: "alice", pwd: "s3cure Pass", wantErr: pwdNoSpaceText},
		{name: "numeric", uname: "alice", pwd: "12345678", wantErr: pwdNotAllNumText},
		{name: "similar to username", uname: "alice", pwd: "Alice1", wantErr: pwdAttrSimText},
		{name: "similar to email local part", uname: "maryjane@example.com", pwd: "maryjane9", wantErr: pwdAttrSimText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(ResetPassword{Username: tt.uname, Password: tt.pwd, PasswordConfirm: tt.pwd})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate.Struct() error = %v", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok || len(vErrs) != 1 {
				t.Fatalf("validate.Struct() error = %v, want one validator.ValidationErrors", err)
			}
			if got := vErrs[0].Translate(translator); got != tt.wantErr {
				t.Errorf("password error = %q, want %q", got, tt.wantErr)
			}
		})
	}
}
