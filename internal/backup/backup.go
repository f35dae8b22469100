// Package backup snapshots the SQLite database, encrypts it with a key
// derived from a configured passphrase, and uploads it to S3-compatible
// storage on a daily schedule.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/store"
)

var (
	ErrDisabled   = errors.New("backup not configured")
	ErrInProgress = errors.New("backup already in progress")
)

const defaultRetentionDays = 30

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration.
type Config struct {
	S3            S3Config
	DBPath        string
	Passphrase    string
	Hour          int // UTC hour of the daily run
	RetentionDays int
}

// Enabled reports whether storage, passphrase and an on-disk database are all present.
func (c Config) Enabled() bool {
	return c.S3.complete() && c.Passphrase != "" && c.DBPath != "" && c.DBPath != ":memory:"
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// Manager runs encrypted backups to S3-compatible storage.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status
	// lastScheduled is the UTC day of the last scheduled run.
	lastScheduled string

	db          *sql.DB
	backupStore *store.BackupStore
	client      s3Client
	now         func() time.Time
	logger      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a new backup manager.
func NewManager(cfg Config, db *sql.DB, bs *store.BackupStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = defaultRetentionDays
	}
	m := &Manager{
		cfg:         cfg,
		db:          db,
		backupStore: bs,
		now:         time.Now,
		logger:      logger.With("component", "backup"),
		status:      Status{State: StateDisabled},
	}

	if cfg.Enabled() {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the scheduled backup loop. It is a no-op when disabled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkSchedule(ctx)
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	if s.LastBackup == nil {
		s.LastBackup = m.status.LastBackup
	}
	m.status = s
	m.mu.Unlock()
}

// checkSchedule runs the daily backup once the configured hour is reached.
func (m *Manager) checkSchedule(ctx context.Context) {
	now := m.now().UTC()
	day := now.Format("2006-01-02")

	m.mu.Lock()
	due := now.Hour() == m.cfg.Hour && m.lastScheduled != day
	if due {
		m.lastScheduled = day
	}
	m.mu.Unlock()
	if !due {
		return
	}

	if _, err := m.run(ctx, model.BackupTriggerScheduled); err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
	}
	if err := m.Cleanup(ctx); err != nil {
		m.logger.Error("backup cleanup failed", "error", err)
	}
}

// RunNow takes a manual backup immediately and returns its record.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	return m.run(ctx, model.BackupTriggerManual)
}

func (m *Manager) run(ctx context.Context, trigger model.BackupTrigger) (*model.Backup, error) {
	m.mu.Lock()
	if m.client == nil {
		m.mu.Unlock()
		return nil, ErrDisabled
	}
	if m.status.InProgress {
		m.mu.Unlock()
		return nil, ErrInProgress
	}
	m.status.State = StateRunning
	m.status.InProgress = true
	client := m.client
	cfg := m.cfg
	m.mu.Unlock()

	record, err := m.runBackup(ctx, client, cfg, trigger)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return record, err
	}

	completed := m.now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &completed})
	m.logger.Info("backup completed",
		"id", record.ID,
		"trigger", record.Trigger,
		"key", record.S3Key,
		"size", record.SizeBytes,
		"pantry_items", record.PantryItemCount,
	)
	return record, nil
}

func (m *Manager) runBackup(ctx context.Context, client s3Client, cfg Config, trigger model.BackupTrigger) (*model.Backup, error) {
	timestamp := m.now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("backup-%s.db.enc", timestamp)
	s3Key := "fusionmeals/" + filename

	record, err := m.backupStore.Create(filename, s3Key, trigger)
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	fail := func(stage string, err error) (*model.Backup, error) {
		if uerr := m.backupStore.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			m.logger.Error("mark backup failed", "id", record.ID, "error", uerr)
		}
		record.Status = model.BackupStatusFailed
		record.ErrorMessage = err.Error()
		return record, fmt.Errorf("%s: %w", stage, err)
	}

	if err := m.backupStore.UpdateStatus(record.ID, model.BackupStatusUploading, ""); err != nil {
		return fail("mark uploading", err)
	}

	tmpDir, err := os.MkdirTemp("", "fusionmeals-backup-")
	if err != nil {
		return fail("create temp dir", err)
	}
	defer os.RemoveAll(tmpDir)
	dbCopy := filepath.Join(tmpDir, "snapshot.db")
	encFile := filepath.Join(tmpDir, filename)

	// flush the WAL so the main file holds every committed page
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fail("wal checkpoint", err)
	}
	contents, err := m.countContents(ctx)
	if err != nil {
		return fail("count contents", err)
	}
	if err := copyFile(cfg.DBPath, dbCopy); err != nil {
		return fail("copy database", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return fail("generate salt", err)
	}
	if err := EncryptFile(dbCopy, encFile, cfg.Passphrase, salt); err != nil {
		return fail("encrypt", err)
	}

	encData, err := os.Open(encFile)
	if err != nil {
		return fail("open encrypted file", err)
	}
	defer encData.Close()

	stat, err := encData.Stat()
	if err != nil {
		return fail("stat encrypted file", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.S3.Bucket),
		Key:           aws.String(s3Key),
		Body:          encData,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	if err := m.backupStore.UpdateCompleted(record.ID, stat.Size(), contents); err != nil {
		return fail("mark completed", err)
	}

	done, err := m.backupStore.GetByID(record.ID)
	if err != nil || done == nil {
		record.Status = model.BackupStatusCompleted
		record.SizeBytes = stat.Size()
		record.UserCount = contents.Users
		record.PantryItemCount = contents.PantryItems
		return record, nil
	}
	return done, nil
}

func (m *Manager) countContents(ctx context.Context) (model.BackupContents, error) {
	var c model.BackupContents
	err := m.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM users), (SELECT COUNT(*) FROM pantry_items)`,
	).Scan(&c.Users, &c.PantryItems)
	if err != nil {
		return c, fmt.Errorf("count backup contents: %w", err)
	}
	return c, nil
}

// Cleanup deletes backups older than the retention period from storage and
// the history table.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	retention := m.cfg.RetentionDays
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	before := m.now().UTC().AddDate(0, 0, -retention)
	keys, err := m.backupStore.DeleteOlderThan(before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete expired backup object", "key", key, "error", err)
		}
	}
	if len(keys) > 0 {
		m.logger.Info("removed expired backups", "count", len(keys))
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
