package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":             "9090",
		"BAD_INT":          "nine",
		"AUTO_MIGRATE":     "true",
		"READ_TIMEOUT":     "15",
		"ACCEPTED_ORIGINS": "http://a.test, ,http://b.test",
		"EMPTY":            "",
	}

	if got := GetString(c, "PORT", "8080"); got != "9090" {
		t.Fatalf("expected 9090, got %s", got)
	}
	if got := GetString(c, "EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("empty values should fall back, got %q", got)
	}
	if got := GetInt(c, "BAD_INT", 7); got != 7 {
		t.Fatalf("expected default for unparsable int, got %d", got)
	}
	if !GetBool(c, "AUTO_MIGRATE", false) {
		t.Fatalf("expected AUTO_MIGRATE to be true")
	}
	if GetBool(nil, "AUTO_MIGRATE", false) {
		t.Fatalf("nil config should return the default")
	}
	if got := GetSeconds(c, "READ_TIMEOUT", 180); got != 15*time.Second {
		t.Fatalf("expected 15s, got %s", got)
	}
	origins := GetList(c, "ACCEPTED_ORIGINS")
	if len(origins) != 2 || origins[0] != "http://a.test" || origins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", origins)
	}
}

type fakeSSM struct {
	pages []*ssm.GetParametersByPathOutput
	calls int
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if !aws.ToBool(in.WithDecryption) {
		return nil, errors.New("parameters must be decrypted")
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestOverlaySSMKeepsEnvironmentValues(t *testing.T) {
	client := &fakeSSM{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []types.Parameter{
				{Name: aws.String("/blogd/prod/db-password"), Value: aws.String("s3cret")},
				{Name: aws.String("/blogd/prod/PORT"), Value: aws.String("1234")},
			},
			NextToken: aws.String("next"),
		},
		{
			Parameters: []types.Parameter{
				{Name: aws.String("/blogd/prod/sentry/dsn"), Value: aws.String("https://dsn")},
			},
		},
	}}

	c := map[string]string{"PORT": "8080"}
	loaded, err := overlaySSM(context.Background(), client, "/blogd/prod/", c)
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}

	if loaded != 2 {
		t.Fatalf("expected 2 parameters loaded, got %d", loaded)
	}
	if c["DB_PASSWORD"] != "s3cret" || c["SENTRY_DSN"] != "https://dsn" {
		t.Fatalf("unexpected config %v", c)
	}
	if c["PORT"] != "8080" {
		t.Fatalf("environment value was overwritten: %s", c["PORT"])
	}
}

func TestLoadSSMWithoutPathIsNoop(t *testing.T) {
	if err := LoadSSM(context.Background(), map[string]string{}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
