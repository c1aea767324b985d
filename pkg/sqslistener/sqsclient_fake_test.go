package sqslistener_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/JailtonJunior94/devkit-go/pkg/sqslistener"
)

// fakeSQSClient is an in-memory stand-in for sqslistener.SQSClient,
// letting tests drive a container/registry deterministically without
// a real queue.
type fakeSQSClient struct {
	mu sync.Mutex

	queueURLs map[string]string

	// pending is consumed by ReceiveMessages in FIFO order, one batch
	// per call; once exhausted, ReceiveMessages blocks until ctx is
	// done so poller goroutines don't busy-loop in tests.
	pending [][]sqslistener.Message

	deleted      []string
	batchDeletes [][]string
	sent         []sentMessage

	deleteErr error
	sendErr   error
}

type sentMessage struct {
	queueURL   string
	body       string
	attributes map[string]string
}

func newFakeSQSClient() *fakeSQSClient {
	return &fakeSQSClient{queueURLs: make(map[string]string)}
}

func (f *fakeSQSClient) withQueue(name, url string) *fakeSQSClient {
	f.queueURLs[name] = url
	return f
}

func (f *fakeSQSClient) enqueue(batch []sqslistener.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, batch)
}

func (f *fakeSQSClient) GetQueueURL(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if url, ok := f.queueURLs[name]; ok {
		return url, nil
	}
	return "", fmt.Errorf("fake: unknown queue %q", name)
}

func (f *fakeSQSClient) ReceiveMessages(ctx context.Context, queueURL string, maxMessages, waitSeconds int32) ([]sqslistener.Message, error) {
	f.mu.Lock()
	if len(f.pending) > 0 {
		batch := f.pending[0]
		f.pending = f.pending[1:]
		f.mu.Unlock()
		return batch, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSQSClient) DeleteMessage(ctx context.Context, queueURL, receiptHandle string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, receiptHandle)
	return nil
}

func (f *fakeSQSClient) DeleteMessageBatch(ctx context.Context, queueURL string, receiptHandles []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchDeletes = append(f.batchDeletes, receiptHandles)
	return nil
}

func (f *fakeSQSClient) SendMessage(ctx context.Context, queueURL, body string, attributes map[string]string) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{queueURL: queueURL, body: body, attributes: attributes})
	return fmt.Sprintf("fake-msg-%d", len(f.sent)), nil
}

func (f *fakeSQSClient) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSQSClient) deletedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func (f *fakeSQSClient) batchDeleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batchDeletes)
}
