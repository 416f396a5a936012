package user

import (
	"context"

	"github.com/trezcool/dereva/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose password reset mail is sent
// synchronously so tests can assert on sent messages.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	initTokenGenerator(conf)
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
			conf:    conf,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
