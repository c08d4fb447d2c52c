package certificates

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"smart-certify/certify-backend/internal/logging"
)

// TempSuffix marks in-flight render files. A render that crashed mid-write
// can leave one behind; the maintenance sweep removes them.
const TempSuffix = ".tmp"

// Options configures a Generator
type Options struct {
	OutputDir       string          `json:"output_dir"`
	Layout          Layout          `json:"layout"`
	Template        Template        `json:"template"`
	Sanitize        SanitizeOptions `json:"sanitize"`
	UniqueFilenames bool            `json:"unique_filenames"`
	Compress        bool            `json:"compress"`
}

// DefaultOptions returns the options of the college deployment.
func DefaultOptions() Options {
	return Options{
		OutputDir: "certificates",
		Layout:    DefaultLayout(),
		Template:  DefaultTemplate(),
		Sanitize:  DefaultSanitizeOptions(),
		Compress:  true,
	}
}

// Generator renders approved requests into PDF files. It holds no mutable
// state and may be shared by concurrent callers.
type Generator struct {
	opts      Options
	sanitizer *Sanitizer
	logger    *zap.Logger
	now       func() time.Time
}

// NewGenerator creates a new certificate generator
func NewGenerator(opts Options, logger *zap.Logger) (*Generator, error) {
	if opts.OutputDir == "" {
		return nil, errors.New("certificate output directory is required")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid certificate layout: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		opts:      opts,
		sanitizer: NewSanitizer(opts.Sanitize),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// OutputDir returns the directory certificates are written to.
func (g *Generator) OutputDir() string {
	return g.opts.OutputDir
}

// Filename returns the file name a request renders to.
func (g *Generator) Filename(req RenderRequest) string {
	if g.opts.UniqueFilenames {
		return DeriveUniqueFilename(req.StudentName, req.CertificateType, req.RequestID)
	}
	return DeriveFilename(req.StudentName, req.CertificateType)
}

// Generate sanitizes the letter, lays out the certificate and writes it to
// the output directory. It returns the bare file name, e.g.
// "johndoe-bonafide.pdf". ctx only scopes logging: a render that has started
// runs to completion.
func (g *Generator) Generate(ctx context.Context, req RenderRequest) (string, error) {
	logger := logging.FromContext(ctx, g.logger)

	if err := req.Validate(); err != nil {
		return "", &GenerationError{Op: "validate", Reason: err.Error(), Err: err}
	}

	if err := g.ensureOutputDir(logger); err != nil {
		return "", newGenerationError("mkdir", ErrDirectoryUnavailable, err)
	}

	fileName := g.Filename(req)
	body := g.sanitizer.Sanitize(req.LetterText)

	engine := newLayoutEngine(g.opts.Layout, g.opts.Template, g.opts.Compress)
	pdf := engine.render(content{
		requestID:       req.RequestID,
		studentName:     req.StudentName,
		certificateType: req.CertificateType,
		body:            body,
		generatedAt:     g.now(),
	})

	if err := commit(pdf, g.opts.OutputDir, fileName); err != nil {
		logger.Error("Failed to write certificate",
			zap.String("file", fileName),
			zap.Error(err))
		return "", newGenerationError("write", ErrStreamWrite, err)
	}

	logger.Info("Certificate generated",
		zap.String("file", fileName),
		zap.String("certificate_request_id", req.RequestID),
		zap.Int("pages", pdf.PageCount()))

	return fileName, nil
}

func (g *Generator) ensureOutputDir(logger *zap.Logger) error {
	info, err := os.Stat(g.opts.OutputDir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%s exists and is not a directory", g.opts.OutputDir)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		return err
	}
	logger.Info("Created certificates directory", zap.String("dir", g.opts.OutputDir))
	return nil
}

// commit streams the document into a temp file next to the target and
// renames it into place, so the target never holds a partial document. The
// temp file is closed on every path and removed unless the rename succeeded.
func commit(pdf *gofpdf.Fpdf, dir, fileName string) (err error) {
	tmp, err := os.CreateTemp(dir, "."+fileName+".*"+TempSuffix)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = pdf.Output(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush PDF: %w", err)
	}
	if err = os.Rename(tmpPath, filepath.Join(dir, fileName)); err != nil {
		return fmt.Errorf("failed to publish PDF: %w", err)
	}
	return nil
}
