package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	cfg "github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/utils"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ArchiveService mirrors exported scan reports to a cloud bucket.
// Optional; when disabled, NewArchiveService returns nil and downloads
// are served without a copy being kept.
type ArchiveService struct {
	config            *cfg.Config
	log               *utils.Logger
	awsSession        *session.Session
	s3Client          *s3.S3
	gcsClient         *gcs.Client
	azureContainerURL azblob.ContainerURL
}

// NewArchiveService initializes the configured provider client
func NewArchiveService(config *cfg.Config, log *utils.Logger) (*ArchiveService, error) {
	if config == nil {
		return nil, fmt.Errorf("invalid configuration: config is nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	if !config.Archive.Enabled {
		log.Info("Report archive is disabled")
		return nil, nil
	}

	srv := &ArchiveService{
		config: config,
		log:    log,
	}

	secrets := cfg.LoadSecrets()
	switch config.Archive.Provider {
	case "aws":
		if err := srv.initAWSClient(secrets.AWSAccessKeyID, secrets.AWSSecretAccessKey); err != nil {
			return nil, fmt.Errorf("failed to initialize AWS client: %w", err)
		}
	case "gcp":
		if err := srv.initGCPClient(secrets.GCPCredentialsFile); err != nil {
			return nil, fmt.Errorf("failed to initialize GCP client: %w", err)
		}
	case "azure":
		if err := srv.initAzureClient(secrets.AzureStorageAccountKey); err != nil {
			return nil, fmt.Errorf("failed to initialize Azure client: %w", err)
		}
	default:
		log.WithField("provider", config.Archive.Provider).Info("No archive provider configured")
		return nil, nil
	}

	return srv, nil
}

func (s *ArchiveService) initAWSClient(accessKey, secretKey string) error {
	s.log.WithFunc().WithFields(logrus.Fields{
		"region": s.config.Archive.AWS.Region,
		"bucket": s.config.Archive.AWS.Bucket,
	}).Debug("Initializing AWS client")

	if s.config.Archive.AWS.Bucket == "" {
		return fmt.Errorf("AWS bucket name is not configured")
	}
	if accessKey == "" || secretKey == "" {
		return fmt.Errorf("AWS credentials not provided")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(s.config.Archive.AWS.Region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %w", err)
	}

	s.awsSession = sess
	s.s3Client = s3.New(sess)

	s.log.WithFunc().Info("AWS client initialized successfully")
	return nil
}

func (s *ArchiveService) initGCPClient(credentialsFile string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.config.Archive.GCP.Bucket == "" {
		return fmt.Errorf("GCP bucket name is not configured")
	}
	if s.config.Archive.GCP.ProjectID == "" {
		return fmt.Errorf("GCP project ID is not configured")
	}
	if credentialsFile == "" {
		return fmt.Errorf("GCP credentials file path not provided")
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		s.log.WithFunc().WithError(err).WithField("credentialsPath", credentialsFile).Error("Credentials file check failed")
		return fmt.Errorf("GCP credentials file not accessible: %w", err)
	}

	client, err := gcs.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return fmt.Errorf("failed to create GCP client: %w", err)
	}

	// Verify bucket access up front
	bucket := client.Bucket(s.config.Archive.GCP.Bucket)
	if _, err := bucket.Attrs(ctx); err != nil {
		s.log.WithFunc().WithError(err).WithField("bucket", s.config.Archive.GCP.Bucket).Error("Failed to access bucket")
		return fmt.Errorf("failed to access GCP bucket %s: %w", s.config.Archive.GCP.Bucket, err)
	}

	s.gcsClient = client
	s.log.WithFunc().Info("GCP client initialized successfully")
	return nil
}

func (s *ArchiveService) initAzureClient(accountKey string) error {
	s.log.WithFunc().WithFields(logrus.Fields{
		"storageAccount": s.config.Archive.Azure.StorageAccount,
		"container":      s.config.Archive.Azure.Container,
	}).Debug("Initializing Azure client")

	if s.config.Archive.Azure.StorageAccount == "" {
		return fmt.Errorf("Azure storage account name is not configured")
	}
	if s.config.Archive.Azure.Container == "" {
		return fmt.Errorf("Azure container name is not configured")
	}
	if accountKey == "" {
		return fmt.Errorf("Azure storage account key not provided")
	}

	credential, err := azblob.NewSharedKeyCredential(s.config.Archive.Azure.StorageAccount, accountKey)
	if err != nil {
		return fmt.Errorf("failed to create Azure credentials: %w", err)
	}

	pipeline := azblob.NewPipeline(credential, azblob.PipelineOptions{})

	containerURL, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net/%s",
		s.config.Archive.Azure.StorageAccount,
		s.config.Archive.Azure.Container))
	if err != nil {
		return fmt.Errorf("failed to parse container URL: %w", err)
	}

	s.azureContainerURL = azblob.NewContainerURL(*containerURL, pipeline)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = s.azureContainerURL.GetProperties(ctx, azblob.LeaseAccessConditions{})
	if err != nil {
		// Create the container if it does not exist yet
		if storageErr, ok := err.(azblob.StorageError); ok && storageErr.ServiceCode() == azblob.ServiceCodeContainerNotFound {
			s.log.WithFunc().WithField("container", s.config.Archive.Azure.Container).Info("Container does not exist, creating it")
			if _, err = s.azureContainerURL.Create(ctx, azblob.Metadata{}, azblob.PublicAccessNone); err != nil {
				return fmt.Errorf("failed to create container %s: %w", s.config.Archive.Azure.Container, err)
			}
		} else {
			return fmt.Errorf("failed to access Azure container %s: %w", s.config.Archive.Azure.Container, err)
		}
	}

	s.log.WithFunc().Info("Azure client initialized successfully")
	return nil
}

// ArchiveReport uploads one exported report under reports/<filename>
func (s *ArchiveService) ArchiveReport(ctx context.Context, filename string, data []byte, contentType string) error {
	key := "reports/" + filename

	s.log.WithFunc().WithFields(logrus.Fields{
		"provider": s.config.Archive.Provider,
		"key":      key,
		"size":     len(data),
	}).Debug("Archiving report")

	switch s.config.Archive.Provider {
	case "aws":
		return s.archiveToAWS(key, data, contentType)
	case "gcp":
		return s.archiveToGCP(ctx, key, data, contentType)
	case "azure":
		return s.archiveToAzure(ctx, key, data, contentType)
	}
	return fmt.Errorf("no archive provider configured")
}

func (s *ArchiveService) archiveToAWS(key string, data []byte, contentType string) error {
	uploader := s3manager.NewUploader(s.awsSession)

	_, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.config.Archive.AWS.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.WithFunc().WithField("key", key).Info("Report archived to S3")
	return nil
}

func (s *ArchiveService) archiveToGCP(ctx context.Context, key string, data []byte, contentType string) error {
	writer := s.gcsClient.Bucket(s.config.Archive.GCP.Bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", key, err)
	}

	s.log.WithFunc().WithField("key", key).Info("Report archived to GCS")
	return nil
}

func (s *ArchiveService) archiveToAzure(ctx context.Context, key string, data []byte, contentType string) error {
	blobURL := s.azureContainerURL.NewBlockBlobURL(key)

	_, err := azblob.UploadBufferToBlockBlob(ctx, data, blobURL, azblob.UploadToBlockBlobOptions{
		BlobHTTPHeaders: azblob.BlobHTTPHeaders{ContentType: contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.WithFunc().WithField("key", key).Info("Report archived to Azure")
	return nil
}
