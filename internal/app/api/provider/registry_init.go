package provider

import (
	"sort"
	"strings"
	"sync"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

// providerRegistry stores provider creation functions
var (
	providerRegistry = make(map[model.ProviderName]Creator)
	registryMutex    sync.RWMutex
)

// Register registers a provider creator under name. Backends call it from init.
func Register(name model.ProviderName, creator Creator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[name] = creator
}

// ParseName normalizes a provider name given on the command line or in
// configuration and checks it is registered.
func ParseName(name string) (model.ProviderName, error) {
	n := model.ProviderName(strings.ToLower(strings.TrimSpace(name)))
	registryMutex.RLock()
	_, ok := providerRegistry[n]
	registryMutex.RUnlock()
	if !ok {
		return "", errors.Wrapf(errors.ErrProviderNotFound, "%q (registered: %s)", name, strings.Join(Registered(), ", "))
	}
	return n, nil
}

// New creates the provider registered under name.
func New(name string, opts Options) (Transcriber, error) {
	n, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	registryMutex.RLock()
	creator := providerRegistry[n]
	registryMutex.RUnlock()

	t, err := creator(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s provider", n)
	}
	return t, nil
}

// Registered returns all registered provider names, sorted.
func Registered() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
