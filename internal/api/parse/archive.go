package parse

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"training-copilot/config"
	"training-copilot/pkg/logger"
	s3client "training-copilot/pkg/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// archiveUpload stores the raw upload under a content-addressed key. Best
// effort only; extraction has already answered the client.
func archiveUpload(ctx context.Context, data []byte) {
	client, err := s3client.GetClient()
	if err != nil {
		logger.Error(err, "%v: s3 client", config.ModuleS3)
		return
	}

	sum := sha256.Sum256(data)
	key := fmt.Sprintf("uploads/%s.pdf", hex.EncodeToString(sum[:]))
	contentType := "application/pdf"
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		key = fmt.Sprintf("uploads/%s.txt", hex.EncodeToString(sum[:]))
		contentType = http.DetectContentType(data)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(config.Cfg.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error(err, "%v: archive upload failed", config.ModuleS3)
		return
	}
	logger.WithFields(map[string]interface{}{"key": key, "bytes": len(data)}).Info("s3: upload archived")
}
