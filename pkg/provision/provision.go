// Package provision prepares a deployment host: it refreshes the OS package
// index, installs the OCR engine, then installs the Python dependencies the
// extraction pipeline shells out to, from a requirements manifest.
//
// There is deliberately no retry or rollback. Each step delegates to the
// ambient package manager and the first failure aborts the sequence.
package provision

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultOCRPackage is the OS package providing the OCR engine.
const DefaultOCRPackage = "tesseract-ocr"

// DefaultManifest is the requirements manifest path, relative to the working
// directory as in the original deployment layout.
const DefaultManifest = "requirements.txt"

// Step is one named provisioning action.
type Step struct {
	Name string
	Run  func(context.Context) error
}

// Provisioner sequences the provisioning steps.
type Provisioner struct {
	ocrPackage string
	manifest   string
	l          *zap.Logger
}

// Option customizes a Provisioner.
type Option func(*Provisioner)

// WithOCRPackage overrides the OS package installed for the OCR engine.
func WithOCRPackage(pkg string) Option {
	return func(p *Provisioner) {
		if pkg != "" {
			p.ocrPackage = pkg
		}
	}
}

// WithManifest overrides the requirements manifest path.
func WithManifest(path string) Option {
	return func(p *Provisioner) {
		if path != "" {
			p.manifest = path
		}
	}
}

// WithLogger provides a logger to the Provisioner.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provisioner) {
		if l != nil {
			p.l = l
		}
	}
}

// New creates a Provisioner with the default package and manifest.
func New(opts ...Option) *Provisioner {
	p := &Provisioner{
		ocrPackage: DefaultOCRPackage,
		manifest:   DefaultManifest,
		l:          zap.NewNop(),
	}
	for _, apply := range opts {
		apply(p)
	}
	return p
}

// Steps returns the provisioning sequence in execution order.
func (p *Provisioner) Steps() []Step {
	return []Step{
		{
			Name: "refresh package index",
			Run:  AptGetUpdate,
		},
		{
			Name: fmt.Sprintf("install %s", p.ocrPackage),
			Run: func(ctx context.Context) error {
				return AptGetInstall(ctx, p.ocrPackage)
			},
		},
		{
			Name: fmt.Sprintf("install requirements from %s", p.manifest),
			Run: func(ctx context.Context) error {
				return PipInstallRequirements(ctx, p.manifest)
			},
		},
	}
}

// Provision runs every step in order and stops at the first failure.
func (p *Provisioner) Provision(ctx context.Context) error {
	return p.ProvisionWith(ctx, nil)
}

// ProvisionWith runs the sequence, reporting each step outcome to observe
// (when non-nil) before returning.
func (p *Provisioner) ProvisionWith(ctx context.Context, observe func(step string, err error)) error {
	for _, step := range p.Steps() {
		p.l.Info("provisioning", zap.String("step", step.Name))
		err := step.Run(ctx)
		if observe != nil {
			observe(step.Name, err)
		}
		if err != nil {
			p.l.Error("provisioning failed", zap.String("step", step.Name), zap.Error(err))
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	p.l.Info("provisioning complete",
		zap.String("package", p.ocrPackage),
		zap.String("manifest", p.manifest))
	return nil
}
