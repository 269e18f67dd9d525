package engine

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/omrsheet/internal/model"
)

const sniffLen = 512

// LogoLoaded is the result of reading a logo file in the background.
type LogoLoaded struct {
	Path     string
	Bytes    int64
	Sniffed  string
	Declared string
	Err      error
}

// SelectLogo records the logo at path using its size and extension type. An
// empty path clears the logo. Content is read separately by LoadLogo.
func (e *Engine) SelectLogo(path string) (*model.Logo, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		e.store.ClearLogo()
		return nil, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		e.Notify("Logo file could not be opened.", model.SeverityDanger)
		return nil, fmt.Errorf("failed to stat logo: %w", err)
	}
	if info.IsDir() {
		e.Notify("Logo must be a file.", model.SeverityDanger)
		return nil, fmt.Errorf("logo path %q is a directory", path)
	}
	logo := model.Logo{
		Name:      filepath.Base(path),
		Path:      path,
		MimeType:  MimeFromName(path),
		SizeBytes: info.Size(),
	}
	e.store.SetLogo(logo)
	e.log.Info("logo selected",
		zap.String("name", logo.Name),
		zap.String("mime", logo.MimeType),
		zap.Int64("size", logo.SizeBytes))
	return &logo, nil
}

// LoadLogo reads the logo content and sniffs its type. It touches no engine
// state and is meant to run off the UI goroutine.
func LoadLogo(logo model.Logo) LogoLoaded {
	out := LogoLoaded{Path: logo.Path, Declared: logo.MimeType}
	f, err := os.Open(logo.Path)
	if err != nil {
		out.Err = fmt.Errorf("failed to open logo: %w", err)
		return out
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only logo.
			_ = cerr
		}
	}()
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		out.Err = fmt.Errorf("failed to read logo: %w", err)
		return out
	}
	rest, err := io.Copy(io.Discard, f)
	if err != nil {
		out.Err = fmt.Errorf("failed to read logo: %w", err)
		return out
	}
	out.Bytes = int64(n) + rest
	out.Sniffed = http.DetectContentType(head[:n])
	return out
}

// LogoLoaded observes a finished background read. It only logs; the draft
// is never gated on it.
func (e *Engine) LogoLoaded(res LogoLoaded) {
	if res.Err != nil {
		e.log.Warn("logo read failed", zap.String("path", res.Path), zap.Error(res.Err))
		return
	}
	fields := []zap.Field{
		zap.String("path", res.Path),
		zap.Int64("bytes", res.Bytes),
		zap.String("sniffed", res.Sniffed),
	}
	if res.Declared != "" && res.Sniffed != res.Declared {
		e.log.Warn("logo content does not match its extension", append(fields, zap.String("declared", res.Declared))...)
		return
	}
	e.log.Info("logo loaded", fields...)
}

// MimeFromName derives a MIME type from a file extension.
func MimeFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".jpg" {
		return "image/jpeg"
	}
	typ := mime.TypeByExtension(ext)
	if typ == "" {
		return "application/octet-stream"
	}
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	return typ
}
