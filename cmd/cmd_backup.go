package cmd

import (
	"context"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/supervisors/backupsuperv"
)

// RunBackupOnce archives the previous weekly window and exits.
func RunBackupOnce(ctx context.Context, cfg *config.Config) error {
	chat := buildChatClient(cfg)
	runner, _, err := buildBackupRunner(cfg, chat)
	if err != nil {
		return err
	}
	return backupsuperv.NewBackupSupervisor(cfg, runner).RunOnce(ctx)
}
