package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestLoadRegistryAllTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: orders-queue
    type: sqs
    sqs:
      uri: https://sqs.eu-west-1.amazonaws.com/123/orders
      region: eu-west-1
      access_key: AKIAEXAMPLE
      secret_key: secret
  - id: catalog-topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-west-1:123:catalog
      region: eu-west-1
  - id: exports
    type: gcppubsub
    gcppubsub:
      project_id: shoplo-exports
      topic: resources
  - id: hook
    type: http
    http:
      url: https://example.com/hook
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.All()); got != 4 {
		t.Fatalf("expected 4 publishers, got %d", got)
	}

	cfg, ok := reg.ByID("orders-queue")
	if !ok || cfg.SQS == nil || cfg.SQS.AccessKey != "AKIAEXAMPLE" {
		t.Fatalf("unexpected sqs config %#v", cfg)
	}
	cfg, ok = reg.ByID("hook")
	if !ok || cfg.HTTP == nil || cfg.HTTP.Method != "POST" || cfg.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("http defaults not applied: %#v", cfg)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{
		ID:   "h1",
		Type: TypeHTTP,
	})
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestValidatePublisherConfigRejectsIncompleteQueues(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{
		ID:   "q1",
		Type: TypeSQS,
		SQS:  &SQSQueueConfig{QueueURL: "https://example.com/queue"},
	})
	if err == nil {
		t.Fatalf("expected validation error for missing sqs region")
	}

	err = validatePublisherConfig(PublisherConfig{
		ID:   "t1",
		Type: TypeSNS,
		SNS:  &SNSTopicConfig{Region: "eu-west-1"},
	})
	if err == nil {
		t.Fatalf("expected validation error for missing sns topic arn")
	}

	err = validatePublisherConfig(PublisherConfig{
		ID:   "g1",
		Type: TypeGCPPubSub,
		GCP:  &GCPQueueConfig{ProjectID: "p"},
	})
	if err == nil {
		t.Fatalf("expected validation error for missing gcppubsub topic")
	}
}
