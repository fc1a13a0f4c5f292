/*
 * @module MQTTSourceTest
 * @description MQTT信号源的信号解析与提交逻辑测试
 */
package connectors

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"burnout-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink 记录提交请求的流水线桩
type fakeSink struct {
	mutex    sync.Mutex
	requests []*models.PredictionRequest
	err      error
}

func (f *fakeSink) Submit(ctx context.Context, request *models.PredictionRequest) (*models.PredictionResult, error) {
	f.mutex.Lock()
	f.requests = append(f.requests, request)
	f.mutex.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &models.PredictionResult{
		RequestID: request.RequestID,
		SubjectID: request.SubjectID,
		RiskScore: 0.5,
		RiskLevel: models.RiskLevelMedium,
	}, nil
}

// fakeMessage 实现mqtt.Message接口的最小桩
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func newTestSource(sink SignalSink) *MQTTSource {
	return NewMQTTSource(&MQTTSourceConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "test-source",
		Topic:    "burnout/signals/#",
		QoS:      1,
	}, sink, log.New(os.Stderr, "[test] ", log.LstdFlags))
}

// TestHandleSignal_SubmitsToSink 测试合法信号被转为预测请求提交
func TestHandleSignal_SubmitsToSink(t *testing.T) {
	sink := &fakeSink{}
	source := newTestSource(sink)

	payload := []byte(`{"subject_id":"emp-001","cache_key":"emp-001:window-1","payload":{"work_hours":11.5,"meeting_count":8}}`)
	source.handleSignal(nil, &fakeMessage{topic: "burnout/signals/emp-001", payload: payload})

	require.Len(t, sink.requests, 1)
	request := sink.requests[0]
	assert.Equal(t, "emp-001", request.SubjectID)
	assert.Equal(t, "emp-001:window-1", request.CacheKey)
	assert.Equal(t, "mqtt", request.Source)
	assert.NotEmpty(t, request.RequestID)
	assert.Equal(t, 11.5, request.RawPayload["work_hours"])
	assert.WithinDuration(t, time.Now(), request.SubmittedAt, 2*time.Second)

	stats := source.GetStatistics()
	assert.Equal(t, int64(1), stats["signals_received"])
	assert.Equal(t, int64(1), stats["signals_submitted"])
}

// TestHandleSignal_InvalidJSON 测试非法JSON只计入解析失败
func TestHandleSignal_InvalidJSON(t *testing.T) {
	sink := &fakeSink{}
	source := newTestSource(sink)

	source.handleSignal(nil, &fakeMessage{topic: "burnout/signals/x", payload: []byte("{not json")})

	assert.Empty(t, sink.requests)
	stats := source.GetStatistics()
	assert.Equal(t, int64(1), stats["parse_errors"])
	assert.Equal(t, int64(0), stats["signals_submitted"])
}

// TestHandleSignal_MissingSubjectID 测试缺少subject_id的信号被拒绝
func TestHandleSignal_MissingSubjectID(t *testing.T) {
	sink := &fakeSink{}
	source := newTestSource(sink)

	source.handleSignal(nil, &fakeMessage{topic: "burnout/signals/x", payload: []byte(`{"payload":{"a":1}}`)})

	assert.Empty(t, sink.requests)
	stats := source.GetStatistics()
	assert.Equal(t, int64(1), stats["parse_errors"])
}

// TestHandleSignal_SubmitRejected 测试流水线拒绝时计入拒绝统计
func TestHandleSignal_SubmitRejected(t *testing.T) {
	sink := &fakeSink{err: context.DeadlineExceeded}
	source := newTestSource(sink)

	payload := []byte(`{"subject_id":"emp-002","payload":{"work_hours":9}}`)
	source.handleSignal(nil, &fakeMessage{topic: "burnout/signals/emp-002", payload: payload})

	require.Len(t, sink.requests, 1)
	stats := source.GetStatistics()
	assert.Equal(t, int64(1), stats["signals_rejected"])
	assert.Equal(t, int64(0), stats["signals_submitted"])
}
