package service

import (
	"rich-text-bridge/internal/dto"
	"rich-text-bridge/internal/pkg/logger"
	"rich-text-bridge/internal/repository/memory"
	"rich-text-bridge/pkg/policy"
)

type IPolicyService interface {
	Resolve(cfg *policy.FieldConfiguration) policy.Policy
	Default() policy.Policy
	Describe(p policy.Policy) *dto.PolicyResponse
}

type policyService struct {
	cache         *memory.PolicyCache
	defaultPolicy policy.Policy
	logger        logger.ILogger
}

// NewPolicyService loads the default field configuration from path when one
// is given. An unreadable file falls back to the all-enabled policy.
func NewPolicyService(cache *memory.PolicyCache, defaultConfigPath string, log logger.ILogger) IPolicyService {
	s := &policyService{
		cache:         cache,
		defaultPolicy: policy.Default(),
		logger:        log,
	}

	if defaultConfigPath != "" {
		cfg, err := policy.LoadFile(defaultConfigPath)
		if err != nil {
			log.Warn("PolicyService", "Failed to load default field configuration", map[string]interface{}{
				"path":  defaultConfigPath,
				"error": err.Error(),
			})
		} else {
			s.defaultPolicy = policy.Parse(cfg)
			log.Info("PolicyService", "Loaded default field configuration", map[string]interface{}{
				"path":              defaultConfigPath,
				"disabled_features": s.defaultPolicy.DisabledFeatures,
			})
		}
	}

	return s
}

// Resolve parses cfg, or returns the default policy when cfg is nil.
func (s *policyService) Resolve(cfg *policy.FieldConfiguration) policy.Policy {
	if cfg == nil {
		return s.defaultPolicy
	}

	key := cfg.Fingerprint()
	if p, found := s.cache.Get(key); found {
		return p
	}

	p := policy.Parse(cfg)
	s.cache.Save(key, p)
	return p
}

func (s *policyService) Default() policy.Policy {
	return s.defaultPolicy
}

func (s *policyService) Describe(p policy.Policy) *dto.PolicyResponse {
	return &dto.PolicyResponse{
		Policy:           p,
		AllowedNodeTypes: p.AllowedNodeTypes(),
		AllowedMarks:     p.AllowedMarks(),
		Fingerprint:      p.Fingerprint(),
	}
}
