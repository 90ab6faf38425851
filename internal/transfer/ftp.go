// Package transfer fetches the hourly telemetry CSV from the logger's FTP
// server and manages the transient local copy.
package transfer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
)

const defaultTimeout = 30 * time.Second

// Config holds FTP endpoint settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// FTPClient downloads files over plain FTP. One connection per fetch; the
// job runs hourly and transfers a single small file, so pooling buys
// nothing here.
type FTPClient struct {
	config Config
	logger *log.Logger
}

// NewFTPClient constructs a client.
func NewFTPClient(config Config, logger *log.Logger) *FTPClient {
	if config.Port == 0 {
		config.Port = 21
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &FTPClient{config: config, logger: logger}
}

// Fetch downloads remoteDir/filename into localDir and returns the local
// path. On any failure no partial file is left behind.
func (c *FTPClient) Fetch(ctx context.Context, remoteDir, filename, localDir string) (string, error) {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", fmt.Errorf("transfer: create local dir: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.config.Timeout))
	if err != nil {
		return "", fmt.Errorf("transfer: dial %s: %w", addr, err)
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			c.logf("ftp quit: %v", err)
		}
	}()

	if err := conn.Login(c.config.Username, c.config.Password); err != nil {
		return "", fmt.Errorf("transfer: login: %w", err)
	}
	if err := conn.ChangeDir(remoteDir); err != nil {
		return "", fmt.Errorf("transfer: cwd %s: %w", remoteDir, err)
	}

	resp, err := conn.Retr(filename)
	if err != nil {
		return "", fmt.Errorf("transfer: retrieve %s: %w", filename, err)
	}
	defer resp.Close()

	localPath := filepath.Join(localDir, filename)
	file, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("transfer: create %s: %w", localPath, err)
	}
	if _, err := io.Copy(file, resp); err != nil {
		file.Close()
		os.Remove(localPath)
		return "", fmt.Errorf("transfer: download %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("transfer: close %s: %w", localPath, err)
	}

	c.logf("downloaded: %s", localPath)
	return localPath, nil
}

// RemoveLocal deletes the transient local file, best-effort.
func (c *FTPClient) RemoveLocal(path string) {
	if err := os.Remove(path); err != nil {
		c.logf("failed to delete: %s: %v", path, err)
		return
	}
	c.logf("deleted: %s", path)
}

func (c *FTPClient) logf(format string, v ...any) {
	if c.logger != nil {
		c.logger.Printf(format, v...)
	}
}
