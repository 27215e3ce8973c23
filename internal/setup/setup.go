// Package setup creates and destroys the platform tables and synchronizes the
// configuration between a folder and the database.
//
// Push replaces the whole stored configuration with the content of a folder,
// pull replaces the whole folder with the stored configuration. Both run the
// platform version check first, inside the same transaction as the database
// work, so a failure never leaves a half-replaced configuration behind.
package setup

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alfredjeanlab/platformsetup/internal/events"
	"github.com/alfredjeanlab/platformsetup/internal/folder"
	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/store"
	"github.com/alfredjeanlab/platformsetup/internal/version"
)

// Options holds the folder layout and behavior switches of a PlatformSetup.
// It is built once at startup (see config.Config) and never mutated.
type Options struct {
	InitialFolder   string // pushed once when the platform is created
	CurrentFolder   string // subject of push and pull
	ExpectedVersion string // platform version this tool supports

	// UseDefaults pushes the built-in configuration when the folder to push
	// does not exist. When false a missing folder is a FilesystemError.
	UseDefaults bool
	// Defaults overrides the built-in configuration (DefaultsFS) when set.
	Defaults fs.FS
}

// PlatformSetup runs the setup operations against one platform database.
type PlatformSetup struct {
	platform  store.Platform
	opts      Options
	publisher events.Publisher
	logger    *slog.Logger
}

// New creates a PlatformSetup. A nil publisher disables events.
func New(platform store.Platform, opts Options, publisher events.Publisher, logger *slog.Logger) *PlatformSetup {
	if opts.ExpectedVersion == "" {
		opts.ExpectedVersion = version.Version
	}
	if opts.Defaults == nil {
		opts.Defaults = DefaultsFS()
	}
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlatformSetup{
		platform:  platform,
		opts:      opts,
		publisher: publisher,
		logger:    logger,
	}
}

// Init creates the platform tables and pushes the initial configuration. It
// does nothing when the platform already exists.
func (p *PlatformSetup) Init(ctx context.Context) error {
	opID := newOperationID()
	logger := p.logger.With("op", opID)

	exists, err := p.platform.TablesExist(ctx)
	if err != nil {
		return storageError("check platform tables", err)
	}
	if exists {
		logger.Info("platform is already created, nothing to do")
		p.warnIfEmpty(ctx, logger)
		return nil
	}

	if err := p.platform.CreateAndInitializeIfNecessary(ctx, p.opts.ExpectedVersion); err != nil {
		return storageError("create platform", err)
	}
	logger.Info("platform created", "version", p.opts.ExpectedVersion)
	p.publish(ctx, logger, events.TopicPlatformCreated, events.PlatformCreated{
		OperationID: opID,
		Version:     p.opts.ExpectedVersion,
		At:          time.Now().UTC(),
	})

	// The version row was written just above, so the gate is skipped.
	if err := p.push(ctx, opID, p.opts.InitialFolder, false); err != nil {
		return err
	}
	logger.Info("initial configuration pushed to database", "folder", p.opts.InitialFolder)
	return nil
}

// Push replaces the stored configuration with the current folder.
func (p *PlatformSetup) Push(ctx context.Context) error {
	return p.PushFolder(ctx, p.opts.CurrentFolder)
}

// PushFolder replaces the stored configuration with the content of dir.
func (p *PlatformSetup) PushFolder(ctx context.Context, dir string) error {
	opID := newOperationID()
	if err := p.push(ctx, opID, dir, true); err != nil {
		return err
	}
	p.logger.Info("configuration pushed to database, restart the platform to apply it", "op", opID, "folder", dir)
	return nil
}

func (p *PlatformSetup) push(ctx context.Context, opID, dir string, checkVersion bool) error {
	logger := p.logger.With("op", opID)

	exists, err := p.platform.TablesExist(ctx)
	if err != nil {
		return storageError("check platform tables", err)
	}
	if !exists {
		return ErrPlatformNotInitialized
	}

	records, usedDefaults, err := p.loadRecords(logger, dir)
	if err != nil {
		return err
	}

	err = p.platform.RunInTransaction(ctx, func(tx store.Store) error {
		if checkVersion {
			if err := p.checkVersion(ctx, tx); err != nil {
				return err
			}
		}
		if err := tx.DeleteAll(ctx); err != nil {
			return &StorageError{Op: "delete configuration", Err: err}
		}
		if err := tx.InsertAll(ctx, records); err != nil {
			return &StorageError{Op: "insert configuration", Err: err}
		}
		return nil
	})
	if err != nil {
		return storageError("push transaction", err)
	}

	summary := summarize(opID, dir, records)
	summary.Defaults = usedDefaults
	logger.Debug("push committed", "records", summary.Records, "tenants", len(summary.Tenants))
	p.publish(ctx, logger, events.TopicConfigurationPushed, summary)
	return nil
}

// loadRecords decodes dir, or the built-in defaults when dir does not exist
// and UseDefaults is set. It reports whether the defaults were used.
func (p *PlatformSetup) loadRecords(logger *slog.Logger, dir string) ([]*model.Configuration, bool, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		logger.Info("pushing configuration from folder", "folder", dir)
		records, err := folder.DecodeAll(dir)
		if err != nil {
			return nil, false, &FilesystemError{Op: "read configuration folder", Path: dir, Err: err}
		}
		return records, false, nil
	case err == nil:
		return nil, false, &FilesystemError{Op: "read configuration folder", Path: dir, Err: errors.New("not a directory")}
	case errors.Is(err, fs.ErrNotExist) && p.opts.UseDefaults:
		logger.Info("folder does not exist, using built-in configuration", "folder", dir)
		records, err := LoadDefaults(p.opts.Defaults)
		if err != nil {
			return nil, false, &FilesystemError{Op: "read built-in configuration", Path: dir, Err: err}
		}
		return records, true, nil
	default:
		return nil, false, &FilesystemError{Op: "read configuration folder", Path: dir, Err: err}
	}
}

// Pull replaces the current folder with the stored configuration.
func (p *PlatformSetup) Pull(ctx context.Context) error {
	return p.PullFolder(ctx, p.opts.CurrentFolder)
}

// PullFolder deletes dir and writes every stored record below it. Platform
// records go to <dir>/<category dir>, tenant records to
// <dir>/tenants/<tenant id>/<category dir>.
func (p *PlatformSetup) PullFolder(ctx context.Context, dir string) error {
	opID := newOperationID()
	logger := p.logger.With("op", opID)

	if dir == "" || filepath.Clean(dir) == string(filepath.Separator) {
		return &FilesystemError{Op: "pull", Path: dir, Err: errors.New("refusing to replace this folder")}
	}

	exists, err := p.platform.TablesExist(ctx)
	if err != nil {
		return storageError("check platform tables", err)
	}
	if !exists {
		return ErrPlatformNotInitialized
	}

	logger.Info("pulling configuration into folder", "folder", dir)
	var records []*model.Configuration
	err = p.platform.RunInTransaction(ctx, func(tx store.Store) error {
		if err := p.checkVersion(ctx, tx); err != nil {
			return err
		}
		var err error
		records, err = store.ReadSnapshot(ctx, tx)
		if err != nil {
			return &StorageError{Op: "read configuration", Err: err}
		}
		return nil
	})
	if err != nil {
		return storageError("pull transaction", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return &FilesystemError{Op: "delete folder", Path: dir, Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &FilesystemError{Op: "create folder", Path: dir, Err: err}
	}
	if err := folder.Encode(dir, records); err != nil {
		return &FilesystemError{Op: "write configuration", Path: dir, Err: err}
	}

	summary := summarize(opID, dir, records)
	logger.Info("configuration pulled, edit the files and push to update the platform", "folder", dir, "records", summary.Records)
	p.publish(ctx, logger, events.TopicConfigurationPulled, summary)
	return nil
}

// Destroy drops the platform tables. It does nothing when they do not exist.
func (p *PlatformSetup) Destroy(ctx context.Context) error {
	opID := newOperationID()
	logger := p.logger.With("op", opID)

	exists, err := p.platform.TablesExist(ctx)
	if err != nil {
		return storageError("check platform tables", err)
	}
	if !exists {
		logger.Info("platform does not exist, nothing to destroy")
		return nil
	}
	if err := p.platform.DropTables(ctx); err != nil {
		return storageError("drop platform tables", err)
	}
	logger.Info("platform tables dropped")
	p.publish(ctx, logger, events.TopicPlatformDestroyed, events.PlatformDestroyed{
		OperationID: opID,
		At:          time.Now().UTC(),
	})
	return nil
}

// warnIfEmpty flags a created platform holding no configuration, which is
// what a failed initial push leaves behind.
func (p *PlatformSetup) warnIfEmpty(ctx context.Context, logger *slog.Logger) {
	records, err := store.ReadSnapshot(ctx, p.platform)
	if err != nil {
		logger.Debug("cannot count stored configuration", "err", err)
		return
	}
	if len(records) == 0 {
		logger.Warn("platform holds no configuration, run push to store it")
	}
}

func (p *PlatformSetup) checkVersion(ctx context.Context, s store.Store) error {
	persisted, err := s.PlatformVersion(ctx)
	if err != nil {
		return &StorageError{Op: "read platform version", Err: err}
	}
	return version.CheckCompatible(persisted, p.opts.ExpectedVersion)
}

func (p *PlatformSetup) publish(ctx context.Context, logger *slog.Logger, topic string, event any) {
	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		logger.Warn("failed to publish event", "topic", topic, "err", err)
	}
}

func summarize(opID, dir string, records []*model.Configuration) events.ConfigurationSynced {
	s := events.ConfigurationSynced{
		OperationID: opID,
		Folder:      dir,
		Records:     len(records),
		Categories:  make(map[string]int),
		At:          time.Now().UTC(),
	}
	seen := make(map[int64]bool)
	for _, c := range records {
		s.Categories[string(c.Category)]++
		if c.TenantID != nil && !seen[*c.TenantID] {
			seen[*c.TenantID] = true
			s.Tenants = append(s.Tenants, *c.TenantID)
		}
	}
	return s
}
