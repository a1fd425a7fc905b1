package user

import "github.com/tandemplan/tandem-backend/internal/model"

type userDTO struct {
	ID          int64
	FullName    string
	Email       string
	PhoneNumber string
	Photo       string
	PushToken   string
	Notify      bool
}

func mapToUser(d *userDTO) *model.User {
	return &model.User{
		ID:        d.ID,
		PushToken: d.PushToken,
		Notify:    d.Notify,
		UserCreate: model.UserCreate{
			FullName:    d.FullName,
			Email:       d.Email,
			PhoneNumber: d.PhoneNumber,
			Photo:       d.Photo,
		},
	}
}
