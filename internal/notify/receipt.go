package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

func NewS3Client(cfg S3Config) *s3.Client {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// ReceiptArchiver stores a JSON receipt per confirmed booking.
type ReceiptArchiver struct {
	client ObjectPutter
	bucket string
}

func NewReceiptArchiver(client ObjectPutter, bucket string) *ReceiptArchiver {
	return &ReceiptArchiver{client: client, bucket: bucket}
}

func ReceiptKey(ev Event) string {
	return fmt.Sprintf("receipts/%d/%d/%s.json", ev.BarbershopID, ev.BookingID, ev.ID)
}

func (a *ReceiptArchiver) Notify(ctx context.Context, ev Event) error {
	if ev.Type != TypeBookingConfirmed {
		return nil
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ReceiptKey(ev)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return err
}
