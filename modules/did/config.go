package did

import (
	"log"
	"time"

	appconfig "emotion-video-server/modules/common/config"
)

// Config - D-ID API 설정
type Config struct {
	APIKey      string
	APIURL      string
	HTTPTimeout time.Duration
}

// LoadConfig - 전역 설정에서 D-ID 설정 구성
func LoadConfig(cfg *appconfig.Config) *Config {
	if !cfg.HasDIDKey() {
		log.Println("⚠️ [DID] DID_API_KEY not set or placeholder")
	}

	didConfig := &Config{
		APIKey:      cfg.DIDAPIKey,
		APIURL:      cfg.DIDAPIURL,
		HTTPTimeout: 60 * time.Second,
	}

	log.Printf("✅ [DID] Config loaded - API URL: %s", didConfig.APIURL)
	return didConfig
}

// HasCredential - 실제 키가 있는지 (빈 값/placeholder 제외)
func (c *Config) HasCredential() bool {
	return c.APIKey != "" && c.APIKey != appconfig.PlaceholderDIDKey
}
