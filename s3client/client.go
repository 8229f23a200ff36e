package s3client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/peter-xbs/FSM/logger"
	"github.com/rs/zerolog"
)

type EnvironmentConfig struct {
	BucketName  string `envconfig:"MDL_COMN_STORAGE_CONTAINER_NAME" required:"true"`
	Env         string `envconfig:"RELEX_ENV" default:"prod"`
	Region      string `envconfig:"MDL_COMN_AWS_REGION_NAME" required:"true"`
	AwsEndpoint string `envconfig:"MDL_COMN_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"MDL_COMN_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"MDL_COMN_AWS_ACCESS_KEY" default:""`
}

func (env EnvironmentConfig) InDevEnv() bool {
	return env.Env == "dev"
}

// Client moves CoNLL chunks and relation results between the worker and one
// bucket. The session is owned by a refresher goroutine; callers report a
// failed request and get a fresh session back.
type Client struct {
	env       EnvironmentConfig
	curr      *session.Session
	sessionCh chan *session.Session
	failedCh  chan error
	closeCh   chan struct{}
}

var clientLogger = logger.NewLogger("S3Client")

func New() (*Client, error) {
	var env EnvironmentConfig
	if err := envconfig.Process("", &env); err != nil {
		clientLogger.Err(err).Caller().Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := &Client{
		env:       env,
		sessionCh: make(chan *session.Session),
		failedCh:  make(chan error),
		closeCh:   make(chan struct{}, 1),
	}
	if err := client.acquireNewSession(); err != nil {
		return nil, err
	}
	go client.serveSessions()
	return client, nil
}

// Upload stores data under key.
func (client *Client) Upload(ctx context.Context, data string, key string) error {
	return client.withSession(key, func(sess *session.Session) error {
		_, err := s3manager.NewUploader(sess).UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(client.env.BucketName),
			Key:         aws.String(key),
			Body:        strings.NewReader(data),
			ContentType: aws.String(contentType(key)),
		})
		return err
	})
}

func (client *Client) Download(ctx context.Context, key string) ([]byte, error) {
	buf := aws.NewWriteAtBuffer([]byte{})
	err := client.withSession(key, func(sess *session.Session) error {
		_, err := s3manager.NewDownloader(sess).DownloadWithContext(ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(client.env.BucketName),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (client *Client) Close() {
	client.closeCh <- struct{}{}
}

// withSession runs op and, when it fails, retries it once on a refreshed
// session.
func (client *Client) withSession(key string, op func(sess *session.Session) error) error {
	keyLogger := clientLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()
	sdkConfig := &aws.Config{Logger: sdkLogger(keyLogger)}

	sess := <-client.sessionCh
	if sess == nil {
		return errors.New("could not get S3 session")
	}
	err := op(sess.Copy(sdkConfig))
	if err == nil {
		return nil
	}
	keyLogger.Err(err).Msg("S3 request failed, retrying on a refreshed session")

	select {
	case client.failedCh <- err:
		sess = <-client.sessionCh
	case sess = <-client.sessionCh:
	}
	if sess == nil {
		return fmt.Errorf("failed to refresh S3 session: %w", err)
	}
	return op(sess.Copy(sdkConfig))
}

func (client *Client) serveSessions() {
	for {
		select {
		case client.sessionCh <- client.curr:
		case err := <-client.failedCh:
			clientLogger.Err(err).Msg("Refreshing S3 session")
			if err := client.acquireNewSession(); err != nil {
				clientLogger.Err(err).Msg("Could not refresh S3 session")
			}
		case <-client.closeCh:
			clientLogger.Info().Msg("Closing client")
			return
		}
	}
}

// acquireNewSession tries the instance role first and then the static
// credentials of the environment.
func (client *Client) acquireNewSession() error {
	client.curr = nil
	configs, credErr := client.sessionConfigs()
	if credErr != nil {
		clientLogger.Debug().Err(credErr).Msg("No static credentials in environment")
	}
	var lastErr error
	for _, cfg := range configs {
		sess, err := session.NewSession(cfg)
		if err == nil {
			_, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{})
		}
		if err != nil {
			lastErr = err
			continue
		}
		client.curr = sess
		clientLogger.Info().Bool("static_credentials", cfg.Credentials != nil).Msg("S3 session initialized")
		return nil
	}
	clientLogger.Err(lastErr).Msg("Could not initialize S3 session")
	return fmt.Errorf("could not initialize S3 session: %w", lastErr)
}

func (client *Client) sessionConfigs() ([]*aws.Config, error) {
	configs := []*aws.Config{
		aws.NewConfig().WithRegion(client.env.Region).WithMaxRetries(4).WithLogLevel(aws.LogDebug),
	}
	envConfig, err := client.envConfig()
	if err != nil {
		return configs, err
	}
	return append(configs, envConfig), nil
}

func (client *Client) envConfig() (*aws.Config, error) {
	creds := credentials.NewStaticCredentials(client.env.AccessKeyID, client.env.AccessKey, "")
	if _, err := creds.Get(); err != nil {
		return nil, err
	}
	cfg := aws.NewConfig().
		WithRegion(client.env.Region).
		WithMaxRetries(4).
		WithCredentials(creds).
		WithLogLevel(aws.LogDebug)
	if client.env.InDevEnv() && client.env.AwsEndpoint != "" {
		cfg = cfg.WithEndpoint(client.env.AwsEndpoint).WithS3ForcePathStyle(true)
	}
	return cfg, nil
}

func contentType(key string) string {
	if strings.HasSuffix(key, ".json") {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

func sdkLogger(keyLogger zerolog.Logger) aws.Logger {
	return aws.LoggerFunc(func(args ...interface{}) {
		keyLogger.Debug().Str("source", "aws-sdk").Msg(fmt.Sprint(args...))
	})
}
