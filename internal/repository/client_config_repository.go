package repository

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	er "github.com/colenielsonauto/agent-arc/internal/errors"
	"github.com/colenielsonauto/agent-arc/internal/models"
	"github.com/colenielsonauto/agent-arc/internal/tracing"
)

const (
	clientIDPrefix  = "client-"
	configFileName  = "client-config.yaml"
	routingFileName = "routing-rules.yaml"
)

var clientIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type ClientConfigRepository interface {
	ListClients(ctx context.Context) ([]string, error)
	GetClientConfig(ctx context.Context, clientID string) (*models.ClientConfig, error)
	GetRoutingRules(ctx context.Context, clientID string) (*models.RoutingRules, error)
	// ReloadClient forces both records back through disk, ignoring the cache.
	ReloadClient(ctx context.Context, clientID string) error
	ClearCache(clientID string)
}

type cacheEntry struct {
	value   any
	modTime time.Time
}

type clientConfigRepository struct {
	baseDir string

	mu           sync.RWMutex
	configCache  map[string]cacheEntry
	routingCache map[string]cacheEntry
}

func NewClientConfigRepository(baseDir string) ClientConfigRepository {
	return &clientConfigRepository{
		baseDir:      baseDir,
		configCache:  make(map[string]cacheEntry),
		routingCache: make(map[string]cacheEntry),
	}
}

func (r *clientConfigRepository) ListClients(ctx context.Context) ([]string, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ClientConfigRepository.ListClients")
	defer span.Finish()
	tracing.TagComponentConfigRepository(span)

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "error reading clients directory"))
		return nil, errors.Wrapf(err, "failed to list clients in %s", r.baseDir)
	}

	clients := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), clientIDPrefix) {
			clients = append(clients, entry.Name())
		}
	}

	span.LogKV("result.count", len(clients))
	return clients, nil
}

func (r *clientConfigRepository) GetClientConfig(ctx context.Context, clientID string) (*models.ClientConfig, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ClientConfigRepository.GetClientConfig")
	defer span.Finish()
	tracing.TagComponentConfigRepository(span)
	tracing.TagClient(span, clientID)

	config, err := r.loadClientConfig(clientID, false)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return config, nil
}

func (r *clientConfigRepository) GetRoutingRules(ctx context.Context, clientID string) (*models.RoutingRules, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ClientConfigRepository.GetRoutingRules")
	defer span.Finish()
	tracing.TagComponentConfigRepository(span)
	tracing.TagClient(span, clientID)

	rules, err := r.loadRoutingRules(clientID, false)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return rules, nil
}

func (r *clientConfigRepository) ReloadClient(ctx context.Context, clientID string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ClientConfigRepository.ReloadClient")
	defer span.Finish()
	tracing.TagComponentConfigRepository(span)
	tracing.TagClient(span, clientID)

	if _, err := r.loadClientConfig(clientID, true); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if _, err := r.loadRoutingRules(clientID, true); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *clientConfigRepository) ClearCache(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clientID == "" {
		r.configCache = make(map[string]cacheEntry)
		r.routingCache = make(map[string]cacheEntry)
		return
	}
	delete(r.configCache, clientID)
	delete(r.routingCache, clientID)
}

func (r *clientConfigRepository) loadClientConfig(clientID string, forceReload bool) (*models.ClientConfig, error) {
	path := filepath.Join(r.baseDir, clientID, configFileName)

	if !forceReload {
		if cached, ok := r.cachedValue(r.configCache, clientID, path); ok {
			return cached.(*models.ClientConfig), nil
		}
	}

	var config models.ClientConfig
	modTime, err := r.readYAMLFile(path, &config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load client config for %s", clientID)
	}

	if err := validateClientConfig(clientID, &config); err != nil {
		return nil, errors.Wrapf(err, "invalid client config for %s", clientID)
	}

	r.storeCache(r.configCache, clientID, &config, modTime)
	return &config, nil
}

func (r *clientConfigRepository) loadRoutingRules(clientID string, forceReload bool) (*models.RoutingRules, error) {
	path := filepath.Join(r.baseDir, clientID, routingFileName)

	if !forceReload {
		if cached, ok := r.cachedValue(r.routingCache, clientID, path); ok {
			return cached.(*models.RoutingRules), nil
		}
	}

	var rules models.RoutingRules
	modTime, err := r.readYAMLFile(path, &rules)
	if err != nil {
		// A present client directory without a rules file is a distinct failure.
		if errors.Is(err, er.ErrClientNotFound) {
			if _, statErr := os.Stat(filepath.Join(r.baseDir, clientID)); statErr == nil {
				return nil, errors.Wrapf(er.ErrRoutingRulesMissing, "no routing rules file for %s", clientID)
			}
		}
		return nil, errors.Wrapf(err, "failed to load routing rules for %s", clientID)
	}

	if len(rules.Routing) == 0 {
		return nil, errors.Wrapf(er.ErrRoutingRulesInvalid, "no routing categories defined for %s", clientID)
	}

	r.storeCache(r.routingCache, clientID, &rules, modTime)
	return &rules, nil
}

// cachedValue returns the cached record as long as the backing file has not
// been replaced by a newer one since it was read.
func (r *clientConfigRepository) cachedValue(cache map[string]cacheEntry, clientID, path string) (any, bool) {
	r.mu.RLock()
	entry, ok := cache[clientID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	info, err := os.Stat(path)
	if err != nil || info.ModTime().After(entry.modTime) {
		return nil, false
	}
	return entry.value, true
}

func (r *clientConfigRepository) storeCache(cache map[string]cacheEntry, clientID string, value any, modTime time.Time) {
	r.mu.Lock()
	cache[clientID] = cacheEntry{value: value, modTime: modTime}
	r.mu.Unlock()
}

func (r *clientConfigRepository) readYAMLFile(path string, out any) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, errors.Wrapf(er.ErrClientNotFound, "configuration file not found: %s", path)
		}
		return time.Time{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return time.Time{}, errors.Wrapf(err, "yaml parsing error in %s", path)
	}
	return info.ModTime(), nil
}

func validateClientConfig(clientID string, config *models.ClientConfig) error {
	if config.Client.ID == "" {
		return errors.Wrap(er.ErrClientConfigInvalid, "client id is empty")
	}
	if config.Client.ID != clientID {
		return errors.Wrapf(er.ErrClientConfigInvalid, "client id mismatch: %s != %s", config.Client.ID, clientID)
	}
	if !strings.HasPrefix(config.Client.ID, clientIDPrefix) {
		return errors.Wrapf(er.ErrClientConfigInvalid, "client id must start with %q", clientIDPrefix)
	}
	if !clientIDPattern.MatchString(config.Client.ID) {
		return errors.Wrap(er.ErrClientConfigInvalid, "client id must contain only alphanumerics, hyphens and underscores")
	}
	if config.Domains.Primary == "" {
		return errors.Wrap(er.ErrClientConfigInvalid, "primary domain is required")
	}
	return nil
}
