package service

import (
	"github.com/fitstudio/fitstudio-server/internal/config"
	"github.com/fitstudio/fitstudio-server/internal/identity"
	"github.com/fitstudio/fitstudio-server/internal/repository"
	"github.com/fitstudio/fitstudio-server/internal/videohost"
)

type Services struct {
	Account *AccountService
	Class   *ClassService
	Video   *VideoService
}

func NewServices(repos *repository.Repositories, identityClient *identity.Client, videoClient *videohost.Client, cfg *config.Config) *Services {
	return &Services{
		Account: NewAccountService(identityClient, repos.Profile, repos.Enrollment),
		Class:   NewClassService(repos.Class, repos.Enrollment, repos.Profile),
		Video:   NewVideoService(videoClient, repos.VideoAsset, cfg),
	}
}
