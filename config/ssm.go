package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// LoadSSM fills config with the parameters stored under SSM_PARAMETER_PATH.
// Values already present in the environment are never overwritten.
// It is a no-op when SSM_PARAMETER_PATH is not set.
func LoadSSM(ctx context.Context, config map[string]string) error {
	path := GetString(config, "SSM_PARAMETER_PATH", "")
	if path == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	loaded, err := overlaySSM(ctx, ssm.NewFromConfig(awsCfg), path, config)
	if err != nil {
		return err
	}

	log.Info().Str("path", path).Int("parameters", loaded).Msg("Loaded configuration from SSM")
	return nil
}

func overlaySSM(ctx context.Context, client ssm.GetParametersByPathAPIClient, path string, config map[string]string) (int, error) {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return loaded, fmt.Errorf("read ssm parameters under %s: %w", path, err)
		}

		for _, param := range page.Parameters {
			key := parameterKey(path, aws.ToString(param.Name))
			if key == "" {
				continue
			}
			if _, exists := config[key]; exists {
				continue
			}
			config[key] = aws.ToString(param.Value)
			loaded++
		}
	}

	return loaded, nil
}

// parameterKey turns "/blogd/prod/db-password" under "/blogd/prod" into "DB_PASSWORD".
func parameterKey(path, name string) string {
	key := strings.TrimPrefix(name, strings.TrimSuffix(path, "/"))
	key = strings.Trim(key, "/")
	key = strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(key)
	return strings.ToUpper(key)
}
