package config

// SiteConfig holds host-specific configuration for a single site.
// This allows customizing crawl behavior per host without touching
// the global flags.
type SiteConfig struct {
	// UserAgent overrides the User-Agent header for this site.
	// If empty, the global user agent is used.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// SkipImages disables image downloads for this site.
	// True in either the defaults or the site entry wins.
	SkipImages bool `yaml:"skip_images,omitempty"`
}

// File represents the structure of the .sitegrab configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations.
	// Keys are the host as it appears in the URL, including any port
	// (e.g., "example.com" or "example.com:8080").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the host-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if len(siteConfig.Headers) > 0 {
			// Merge into a fresh map; result.Headers still aliases the
			// defaults map and must not be written through.
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if siteConfig.SkipImages {
			result.SkipImages = true
		}
	}

	return result
}
