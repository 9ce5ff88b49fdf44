package config

import "time"

// defaults is the lowest overlay layer.  Keys are koanf keys (lower-case
// env var names).  SECRET_KEY and DATABASE_URL are deliberately absent.
func defaults() map[string]any {
	return map[string]any{
		"app_name":    "TalentFlux API",
		"version":     "1.0.0",
		"description": "Intelligent HR Recruitment Platform API",

		"environment": "development",
		"debug":       false,

		"host":             "0.0.0.0",
		"port":             8000,
		"workers":          1,
		"read_timeout":     10 * time.Second,
		"write_timeout":    15 * time.Second,
		"idle_timeout":     60 * time.Second,
		"shutdown_timeout": 10 * time.Second,

		"algorithm":                   "HS256",
		"access_token_expire_minutes": 30,
		"refresh_token_expire_days":   7,

		"allowed_origins": []string{"http://localhost:3000", "https://app.talentflux.com"},
		"allowed_hosts":   []string{"localhost", "127.0.0.1", "app.talentflux.com"},

		"database_pool_size":    20,
		"database_max_overflow": 30,
		"database_pool_timeout": 30,

		"redis_url":       "redis://localhost:6379",
		"redis_pool_size": 10,
		"redis_required":  false,

		"openai_model":    "gpt-4o",
		"claude_model":    "claude-3-sonnet-20240229",
		"embedding_model": "text-embedding-3-small",
		"ai_enabled":      true,
		"rag_enabled":     true,
		"max_tokens":      4000,
		"temperature":     0.1,

		"storage_bucket": "talentflux-storage",
		"storage_region": "us-east-1",

		"smtp_port":  587,
		"smtp_tls":   true,
		"from_email": "noreply@talentflux.com",

		"log_level":                  "INFO",
		"log_format":                 "json",
		"enable_tracing":             false,
		"metrics_enabled":            true,
		"rate_limit_per_minute":      100,
		"rate_limit_auth_per_minute": 5,

		"default_page_size": 20,
		"max_page_size":     100,

		"max_file_size":      10 * 1024 * 1024, // 10 MB
		"allowed_file_types": []string{".pdf", ".doc", ".docx", ".txt"},

		"data_retention_days": 2555, // seven years
		"consent_expiry_days": 365,

		"feature_ai_matching":   true,
		"feature_ai_screening":  true,
		"feature_masked_review": true,
		"feature_dei_analytics": true,
	}
}
