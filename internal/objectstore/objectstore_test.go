package objectstore

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestPublicObjectURL(t *testing.T) {
	tests := []struct {
		base, bucket, key string
		want              string
	}{
		{base: "https://cdn.example.com", bucket: "recetario", key: "images/u1/profile_photo.png",
			want: "https://cdn.example.com/recetario/images/u1/profile_photo.png"},
		{base: "http://localhost:9000", bucket: "b", key: "/a.jpg", want: "http://localhost:9000/b/a.jpg"},
	}
	for _, tt := range tests {
		if got := publicObjectURL(tt.base, tt.bucket, tt.key); got != tt.want {
			t.Errorf("publicObjectURL(%q, %q, %q) = %q, want %q", tt.base, tt.bucket, tt.key, got, tt.want)
		}
	}
}

func TestMinioPublicURL(t *testing.T) {
	m, err := NewMinio(MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "recetario",
		PublicURL: "http://localhost:9000/",
	})
	if err != nil {
		t.Fatalf("NewMinio() error = %v", err)
	}
	got, err := m.URL(context.Background(), "images/u1/recipes/r1.jpg")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if got != "http://localhost:9000/recetario/images/u1/recipes/r1.jpg" {
		t.Errorf("URL() = %q", got)
	}
}

func TestMinioPresignedURL(t *testing.T) {
	m, err := NewMinio(MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "recetario",
		Region:    "us-east-1",
	})
	if err != nil {
		t.Fatalf("NewMinio() error = %v", err)
	}
	// With a region configured, presigning is done locally.
	got, err := m.URL(context.Background(), "images/u1/recipes/r1.jpg")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if !strings.Contains(got, "X-Amz-Signature=") {
		t.Errorf("expected a presigned URL, got %q", got)
	}
}

func TestS3PresignedURL(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "eu-west-1",
		Credentials:  aws.AnonymousCredentials{},
		BaseEndpoint: aws.String("http://localhost:4566"),
		UsePathStyle: true,
	})
	store := NewS3(client, S3Config{Bucket: "recetario"})

	got, err := store.URL(context.Background(), "images/u1/profile_photo.png")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if !strings.HasPrefix(got, "http://localhost:4566/recetario/images/u1/profile_photo.png") {
		t.Errorf("unexpected URL %q", got)
	}
}
