// Package notifier emails finished analysis results to container owners.
// ScanAndNotify handles one container; Start runs RunOnce on a cron
// schedule until its context is cancelled.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/filex"
	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/mailer"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/containerhub/internal/server/storage"
	"github.com/robfig/cron/v3"
)

const Subject = "Analysis results"

type Notifier struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	storage     storage.Storage
	mailer      mailer.Mailer
	logger      logging.Logger
	interval    time.Duration

	mu   sync.Mutex
	sent map[int64]string
}

func New(db dbx.DBTX, m repomanager.RepositoryManager, st storage.Storage, ml mailer.Mailer, logger logging.Logger, interval time.Duration) *Notifier {
	return &Notifier{
		db:          db,
		repomanager: m,
		storage:     st,
		mailer:      ml,
		logger:      logger.With("module", "notifier"),
		interval:    interval,
		sent:        make(map[int64]string),
	}
}

// Body returns the non-blank lines of an analysis artifact, trimmed and
// joined with newlines.
func Body(content []byte) string {
	lines := strings.Split(string(content), "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// ScanAndNotify mails the analysis result of containerID to its owner. A
// missing or blank result is not an error; neither is a result that was
// already sent with the same content.
func (n *Notifier) ScanAndNotify(ctx context.Context, containerID int64) error {
	c, err := n.repomanager.Containers(n.db).GetByID(ctx, containerID)
	if err != nil {
		return fmt.Errorf("load container %d: %w", containerID, err)
	}
	owner, err := n.repomanager.Users(n.db).GetByID(ctx, c.UserID)
	if err != nil {
		return fmt.Errorf("load owner of container %d: %w", containerID, err)
	}

	name := filex.AnalysisName(c.FilePath)
	content, err := n.storage.Read(ctx, owner.ID, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			n.logger.Debug(ctx, "no analysis result yet", "container_id", c.ID)
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}

	body := Body(content)
	if body == "" {
		n.logger.Debug(ctx, "analysis result is empty", "container_id", c.ID)
		return nil
	}

	n.mu.Lock()
	already := n.sent[c.ID] == body
	n.mu.Unlock()
	if already {
		return nil
	}

	if err := n.mailer.Send(ctx, mailer.Message{To: owner.Email, Subject: Subject, Body: body}); err != nil {
		return fmt.Errorf("send result of container %d: %w", c.ID, err)
	}

	n.mu.Lock()
	n.sent[c.ID] = body
	n.mu.Unlock()

	n.logger.Info(ctx, "analysis result sent", "container_id", c.ID, "user_id", owner.ID)
	return nil
}

// RunOnce scans every container. Failures are logged per container and do
// not stop the scan. Sent-result entries of containers that no longer exist
// are dropped.
func (n *Notifier) RunOnce(ctx context.Context) {
	all, err := n.repomanager.Containers(n.db).ListAll(ctx)
	if err != nil {
		n.logger.Error(ctx, "list containers", "error", err)
		return
	}

	live := make(map[int64]struct{}, len(all))
	for _, c := range all {
		live[c.ID] = struct{}{}
	}
	n.mu.Lock()
	for id := range n.sent {
		if _, ok := live[id]; !ok {
			delete(n.sent, id)
		}
	}
	n.mu.Unlock()

	for _, c := range all {
		if ctx.Err() != nil {
			return
		}
		if err := n.ScanAndNotify(ctx, c.ID); err != nil {
			n.logger.Warn(ctx, "notify failed", "container_id", c.ID, "error", err)
		}
	}
}

// Start schedules RunOnce every interval and blocks until ctx is done.
// A zero interval disables the notifier.
func (n *Notifier) Start(ctx context.Context) error {
	if n.interval <= 0 {
		n.logger.Info(ctx, "notifier disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", n.interval), func() { n.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule notifier: %w", err)
	}

	n.logger.Info(ctx, "notifier started", "interval", n.interval.String())
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	n.logger.Info(ctx, "notifier stopped")
	return nil
}
