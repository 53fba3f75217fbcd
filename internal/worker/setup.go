package worker

import (
	"log"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/pkg/email"
	"github.com/qs3c/kidcare_server/internal/pkg/oss"
	"github.com/qs3c/kidcare_server/internal/repository"
)

// NewDefaultProcessor 按配置组装处理器：OSS 未配置时跳过归档，SMTP 未配置时发信记为警告
func NewDefaultProcessor(repos *repository.Repositories, cfg *config.Config, publisher StatusPublisher) *Processor {
	var archiver Archiver
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			archiver = ossClient
			log.Println("OSS client initialized")
		}
	}

	return NewProcessor(
		repos.Subscription,
		repos.Invoice,
		repos.Schedule,
		archiver,
		email.NewService(&cfg.Email),
		publisher,
		cfg,
	)
}
