package goPoP

// resolved returns the effective per-token configuration: the descriptor's own
// when set, otherwise the all-enabled defaults.
func (d *CreationDescriptor) resolved() ClaimsConfig {
	if d.Claims != nil {
		return *d.Claims
	}
	return DefaultClaims()
}

// validate checks the descriptor's required inputs before any claim is
// computed. It fails fast with an invalid-argument error so a partial payload
// is never produced.
func (d *CreationDescriptor) validate() error {
	if d == nil {
		return ErrNilDescriptor
	}
	if d.AccessToken == "" {
		return ErrEmptyAccessToken
	}
	if d.Material.Key == nil || d.Material.Algorithm == "" {
		return ErrMissingSigningMaterial
	}

	cfg := d.resolved()
	if cfg.Method && d.Request.Method == "" {
		return ErrEmptyMethod
	}
	if (cfg.Host || cfg.Path) && d.Request.URL == nil {
		return ErrMissingURI
	}
	if cfg.Headers && d.Request.Headers == nil {
		return ErrMissingHeaders
	}

	return nil
}
