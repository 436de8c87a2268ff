package betterauth

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OTP.Length != 6 {
		t.Fatalf("default OTP length %d", cfg.OTP.Length)
	}
	if cfg.OTP.ExpiresIn.Minutes() != 5 {
		t.Fatalf("default OTP expiry %v", cfg.OTP.ExpiresIn)
	}
	if cfg.OTP.Retention.Hours() != 24 {
		t.Fatalf("default OTP retention %v", cfg.OTP.Retention)
	}
	if cfg.SignUp.Enabled {
		t.Fatal("sign-up on verification must default off")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"zero otp length", func(c *Config) { c.OTP.Length = 0 }, false},
		{"one digit", func(c *Config) { c.OTP.Length = 1 }, true},
		{"oversized otp", func(c *Config) { c.OTP.Length = 65 }, false},
		{"zero expiry", func(c *Config) { c.OTP.ExpiresIn = 0 }, false},
		{"negative retention", func(c *Config) { c.OTP.Retention = -1 }, false},
		{"signup without temp email", func(c *Config) { c.SignUp.Enabled = true }, false},
		{"signup with temp email", func(c *Config) {
			c.SignUp.Enabled = true
			c.SignUp.TempEmail = func(p string) string { return p + "@x" }
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.valid && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
