package database

import "testing"

func TestBuildConnString(t *testing.T) {
	tests := []struct {
		name string
		cfg  DBConfig
		env  string
		want string
	}{
		{
			name: "default ssl",
			cfg:  DBConfig{Host: "localhost", Port: 5432, User: "app", Password: "pw", Database: "loyalty"},
			want: "postgres://app:pw@localhost:5432/loyalty?connect_timeout=5&sslmode=disable",
		},
		{
			name: "ssl from env",
			cfg:  DBConfig{Host: "db", Port: 6432, User: "app", Password: "pw", Database: "loyalty"},
			env:  "require",
			want: "postgres://app:pw@db:6432/loyalty?connect_timeout=5&sslmode=require",
		},
		{
			name: "config wins over env",
			cfg:  DBConfig{Host: "db", Port: 5432, User: "app", Password: "pw", Database: "loyalty", SSLMode: "verify-full"},
			env:  "require",
			want: "postgres://app:pw@db:5432/loyalty?connect_timeout=5&sslmode=verify-full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PG_SSLMODE", tt.env)
			if got := buildConnString(tt.cfg); got != tt.want {
				t.Errorf("buildConnString() = %q, want %q", got, tt.want)
			}
		})
	}
}
