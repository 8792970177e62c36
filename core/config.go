package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		DebugHost                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	// SiteConfig seeds the runtime admin.SystemConfig of a fresh store.
	SiteConfig struct {
		Name            string
		SupportEmail    string
		AIEnabled       bool
		AIRequestLimit  int
		SMTPHost        string
		SMSProvider     string
		VNPayEnabled    bool
		MoMoEnabled     bool
		StripeEnabled   bool
		SeedMockData    bool
		DefaultLanguage string
	}

	AIConfig struct {
		APIKey  string
		Model   string
		BaseURL string
		Timeout time.Duration
	}

	Config struct {
		Env             string
		Build           string
		Debug           bool
		TestMode        bool
		AppName         string
		SecretKey       string
		WorkDir         string
		FrontendBaseURL string
		SuperAdminEmail string
		// SuperAdminPassword provisions the super-admin account at start-up when it does not exist yet.
		SuperAdminPassword string
		PasswordHashCost   int
		RollbarToken       string
		SendgridApiKey     string
		RestoreDelay       time.Duration

		Server ServerConfig
		Site   SiteConfig
		AI     AIConfig

		defaultFromEmail string
	}
)

// DefaultFromEmail parses the configured sender address, falling back to a bare noreply address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "EduCode")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("superAdminEmail", "admin@educode.vn")
	v.SetDefault("superAdminPassword", "")
	v.SetDefault("defaultFromEmail", "EduCode <noreply@localhost>")
	v.SetDefault("passwordHashCost", 10)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("restoreDelay", 2*time.Second)

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("site.name", "EduCode Platform")
	v.SetDefault("site.supportEmail", "support@educode.vn")
	v.SetDefault("site.aiEnabled", true)
	v.SetDefault("site.aiRequestLimit", 100)
	v.SetDefault("site.smtpHost", "smtp.educode.vn")
	v.SetDefault("site.smsProvider", "Twilio")
	v.SetDefault("site.vnpayEnabled", true)
	v.SetDefault("site.momoEnabled", true)
	v.SetDefault("site.stripeEnabled", false)
	v.SetDefault("site.seedMockData", true)
	v.SetDefault("site.defaultLanguage", "en")

	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.baseURL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.timeout", 20*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
		v.SetDefault("site.seedMockData", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:                env,
		Build:              v.GetString("build"),
		Debug:              v.GetBool("debug"),
		TestMode:           v.GetBool("testMode"),
		AppName:            v.GetString("appName"),
		SecretKey:          v.GetString("secretKey"),
		WorkDir:            workDir,
		FrontendBaseURL:    v.GetString("frontendBaseURL"),
		SuperAdminEmail:    CleanString(v.GetString("superAdminEmail"), true /* lower */),
		SuperAdminPassword: v.GetString("superAdminPassword"),
		PasswordHashCost:   v.GetInt("passwordHashCost"),
		RollbarToken:       v.GetString("rollbarToken"),
		SendgridApiKey:     v.GetString("sendgridApiKey"),
		RestoreDelay:       v.GetDuration("restoreDelay"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		},
		Site: SiteConfig{
			Name:            v.GetString("site.name"),
			SupportEmail:    v.GetString("site.supportEmail"),
			AIEnabled:       v.GetBool("site.aiEnabled"),
			AIRequestLimit:  v.GetInt("site.aiRequestLimit"),
			SMTPHost:        v.GetString("site.smtpHost"),
			SMSProvider:     v.GetString("site.smsProvider"),
			VNPayEnabled:    v.GetBool("site.vnpayEnabled"),
			MoMoEnabled:     v.GetBool("site.momoEnabled"),
			StripeEnabled:   v.GetBool("site.stripeEnabled"),
			SeedMockData:    v.GetBool("site.seedMockData"),
			DefaultLanguage: v.GetString("site.defaultLanguage"),
		},
		AI: AIConfig{
			APIKey:  v.GetString("ai.apiKey"),
			Model:   v.GetString("ai.model"),
			BaseURL: v.GetString("ai.baseURL"),
			Timeout: v.GetDuration("ai.timeout"),
		},
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}

// NewTestConfig returns the configuration used by tests: cheap password hashing, short restore delay
// and no seeded mock data.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.Env = "TEST"
	conf.TestMode = true
	conf.PasswordHashCost = 4 // bcrypt.MinCost
	conf.RestoreDelay = 10 * time.Millisecond
	conf.Site.SeedMockData = false
	conf.SuperAdminEmail = "root@educode.test"
	return conf
}
