// Package transfer implements TransferOrchestrator (§4.8) and the
// TargetProvider contract (§4.5). Concrete transports live in the
// provider subpackage; the core never hard-codes transport semantics.
package transfer

import (
	"context"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// TargetProvider is the per-transport plug-in contract from §4.5. Every
// transport implements at minimum ValidateSettings/TestConnectivity/
// Transfer; ListRemoteInstances/DeleteRemote are optional and only needed
// by a target that participates in remote retention (§4.3).
type TargetProvider interface {
	// Type returns the TargetDef.Type string this provider handles.
	Type() string

	// ValidateSettings is a pure, config-time check of TargetSpecificSettings.
	ValidateSettings(target model.TargetDef) error

	// TestConnectivity is a read-only reachability probe.
	TestConnectivity(ctx context.Context, target model.TargetDef) (bool, string)

	// Transfer uploads one local file to the target, returning its remote
	// path relative to the target's configured root.
	Transfer(ctx context.Context, rc *runctx.RunContext, localPath string, target model.TargetDef) (remotePath string, size int64, err error)
}

// RemoteRetentionProvider is the optional extension a TargetProvider
// implements to participate in remote retention (§4.3, §4.5).
type RemoteRetentionProvider interface {
	TargetProvider
	ListRemoteInstances(ctx context.Context, target model.TargetDef, baseFileName, extension string) ([]model.FileRef, error)
	DeleteRemote(ctx context.Context, target model.TargetDef, file model.FileRef) error
}

// Registry resolves a TargetDef.Type to its TargetProvider.
type Registry struct {
	providers map[string]TargetProvider
}

func NewRegistry(providers ...TargetProvider) *Registry {
	r := &Registry{providers: map[string]TargetProvider{}}
	for _, p := range providers {
		r.providers[p.Type()] = p
	}
	return r
}

func (r *Registry) Lookup(targetType string) (TargetProvider, bool) {
	p, ok := r.providers[targetType]
	return p, ok
}
