// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
)

// DefaultSignedURLExpiry is used when DiagramService.Expiry is zero.
const DefaultSignedURLExpiry = 15 * time.Minute

// ErrSigningUnavailable is returned when neither a signer e-mail nor a
// SignBytes function is configured.
var ErrSigningUnavailable = errors.New("url signing is not configured")

// DiagramService issues V4 signed URLs for diagram images stored in GCS.
type DiagramService struct {
	StorageClient *storage.Client
	IAMClient     *credentials.IamCredentialsClient
	SignerEmail   string // Service account that owns the signature.
	Expiry        time.Duration
	// SignBytes overrides the IAM SignBlob call, e.g. with a local key.
	SignBytes func([]byte) ([]byte, error)
}

// GenerateSignedURL returns a GET URL for a gs:// diagram URI.
func (s *DiagramService) GenerateSignedURL(ctx context.Context, gcsURI string) (string, error) {
	obj, err := cloud.ParseGCSURI(gcsURI)
	if err != nil {
		return "", err
	}
	if s.SignerEmail == "" {
		return "", ErrSigningUnavailable
	}

	expiry := s.Expiry
	if expiry <= 0 {
		expiry = DefaultSignedURLExpiry
	}

	signBytes := s.SignBytes
	if signBytes == nil {
		if s.IAMClient == nil {
			return "", ErrSigningUnavailable
		}
		signBytes = func(payload []byte) ([]byte, error) {
			resp, err := s.IAMClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: payload,
			})
			if err != nil {
				return nil, fmt.Errorf("iam SignBlob failed: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expiry),
		GoogleAccessID: s.SignerEmail,
		SignBytes:      signBytes,
	}
	u, err := s.StorageClient.Bucket(obj.Bucket).SignedURL(obj.Name, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", obj.Bucket, obj.Name, err)
	}
	return u, nil
}
