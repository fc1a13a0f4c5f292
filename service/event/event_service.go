/*
 * @module service/event_service
 * @description 事件管理服务，提供预测结果与告警的SSE推送，以及多副本场景下的数据库变更监听
 * @architecture 事件驱动架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 流水线回调/数据库通知 -> 事件去重 -> 客户端推送
 * @rules 推送采用非阻塞发送，慢客户端丢事件不阻塞流水线；同一事件键在去重窗口内只推送一次
 * @dependencies burnout-service/service/models, gorm.io/gorm, github.com/lib/pq
 * @refs api/controllers/event_controller.go, service/pipeline/callbacks.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"burnout-service/service/models"

	"github.com/lib/pq"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

const (
	// 数据库通知通道名
	notifyChannel = "burnout_changes"
	// 去重窗口，窗口内同一事件键只推送一次
	dedupeWindow = 2 * time.Minute
)

// EventService 事件管理服务
type EventService struct {
	db          *gorm.DB
	connections map[string]*SSEClient // connectionID -> client
	mu          sync.RWMutex
	recentKeys  map[string]time.Time // 事件键 -> 首次推送时间
	recentMu    sync.Mutex
	dbListener  *pq.Listener
	ctx         context.Context
	cancel      context.CancelFunc
}

// SSEClient SSE客户端连接
type SSEClient struct {
	ID            string
	SubjectFilter string // 非空时只接收该对象的事件
	Channel       chan *models.StreamEvent
	Done          chan bool
	ClientIP      string
}

// NewEventService 创建事件服务实例，db可为空（不启用数据库变更监听时）
func NewEventService(db *gorm.DB) *EventService {
	ctx, cancel := context.WithCancel(context.Background())

	service := &EventService{
		db:          db,
		connections: make(map[string]*SSEClient),
		recentKeys:  make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}

	// 启动后台清理
	go service.startMaintenance()

	return service
}

// === SSE连接管理 ===

// AddConnection 添加SSE连接
func (s *EventService) AddConnection(connectionID, clientIP, subjectFilter string) *SSEClient {
	s.mu.Lock()
	defer s.mu.Unlock()

	client := &SSEClient{
		ID:            connectionID,
		SubjectFilter: subjectFilter,
		Channel:       make(chan *models.StreamEvent, 100), // 缓冲100个事件
		Done:          make(chan bool),
		ClientIP:      clientIP,
	}
	s.connections[connectionID] = client

	log.Printf("SSE连接已建立: 连接ID=%s, IP=%s, 对象过滤=%s", connectionID, clientIP, subjectFilter)
	return client
}

// RemoveConnection 移除SSE连接
func (s *EventService) RemoveConnection(connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, exists := s.connections[connectionID]; exists {
		close(client.Done)
		delete(s.connections, connectionID)
		log.Printf("SSE连接已断开: 连接ID=%s", connectionID)
	}
}

// ConnectionCount 当前活跃连接数
func (s *EventService) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// === 事件推送 ===

// Broadcast 向所有匹配的连接推送事件
func (s *EventService) Broadcast(event *models.StreamEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, client := range s.connections {
		if !matchesFilter(client.SubjectFilter, event) {
			continue
		}
		select {
		case client.Channel <- event:
		default:
			log.Printf("连接 %s 事件队列已满，跳过推送", client.ID)
		}
	}
}

// BroadcastOnce 按事件键去重后推送
// 流水线回调与数据库通知可能携带同一事件，窗口内只推送一次
func (s *EventService) BroadcastOnce(key string, event *models.StreamEvent) {
	if key != "" && !s.markDelivered(key) {
		return
	}
	s.Broadcast(event)
}

// OnResult 流水线结果回调适配器
func (s *EventService) OnResult(result *models.PredictionResult) {
	s.BroadcastOnce("result:"+result.RequestID, &models.StreamEvent{
		EventType: models.StreamEventResult,
		Payload:   result,
		EmittedAt: time.Now(),
	})
}

// OnAlert 流水线告警回调适配器
func (s *EventService) OnAlert(alert *models.Alert) {
	s.BroadcastOnce("alert:"+alert.AlertID, &models.StreamEvent{
		EventType: models.StreamEventAlert,
		Payload:   alert,
		EmittedAt: time.Now(),
	})
}

// markDelivered 记录事件键，返回是否首次出现
func (s *EventService) markDelivered(key string) bool {
	s.recentMu.Lock()
	defer s.recentMu.Unlock()

	if _, seen := s.recentKeys[key]; seen {
		return false
	}
	s.recentKeys[key] = time.Now()
	return true
}

// matchesFilter 检查事件是否匹配连接的对象过滤条件
func matchesFilter(subjectFilter string, event *models.StreamEvent) bool {
	if subjectFilter == "" {
		return true
	}
	switch payload := event.Payload.(type) {
	case *models.PredictionResult:
		return payload.SubjectID == subjectFilter
	case *models.Alert:
		return payload.SubjectID == subjectFilter
	case map[string]interface{}:
		return cast.ToString(payload["subject_id"]) == subjectFilter
	default:
		return true
	}
}

// === 数据库变更监听 ===

// StartChangeListener 启动数据库变更监听
// 多副本部署时，其他副本落库的记录通过pg_notify同步推送给本副本的SSE客户端
func (s *EventService) StartChangeListener(connStr string) error {
	if s.db == nil {
		return fmt.Errorf("未配置数据库，无法启动变更监听")
	}

	if err := s.ensureNotifyTriggers(); err != nil {
		return fmt.Errorf("创建通知触发器失败: %w", err)
	}

	s.dbListener = pq.NewListener(connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("PostgreSQL监听器事件: %v, 错误: %v", ev, err)
		}
	})

	if err := s.dbListener.Listen(notifyChannel); err != nil {
		return fmt.Errorf("监听数据库通知失败: %w", err)
	}

	go s.runChangeListener()

	log.Println("数据库变更监听器已启动")
	return nil
}

// runChangeListener 处理数据库通知
func (s *EventService) runChangeListener() {
	for {
		select {
		case notification := <-s.dbListener.Notify:
			if notification != nil {
				s.handleDBNotification(notification)
			}
		case <-s.ctx.Done():
			log.Println("数据库变更监听器已停止")
			return
		}
	}
}

// handleDBNotification 将数据库插入事件转为SSE推送
func (s *EventService) handleDBNotification(notification *pq.Notification) {
	var changeData map[string]interface{}
	if err := json.Unmarshal([]byte(notification.Extra), &changeData); err != nil {
		log.Printf("解析数据库通知失败: %v", err)
		return
	}

	tableName, _ := changeData["table"].(string)
	eventType, _ := changeData["type"].(string)
	if eventType != "INSERT" {
		return
	}
	newData, _ := changeData["new_data"].(map[string]interface{})
	if newData == nil {
		return
	}

	switch tableName {
	case models.PredictionRecord{}.TableName():
		s.BroadcastOnce("result:"+cast.ToString(newData["request_id"]), &models.StreamEvent{
			EventType: models.StreamEventResult,
			Payload:   newData,
			EmittedAt: time.Now(),
		})
	case models.AlertRecord{}.TableName():
		s.BroadcastOnce("alert:"+cast.ToString(newData["alert_id"]), &models.StreamEvent{
			EventType: models.StreamEventAlert,
			Payload:   newData,
			EmittedAt: time.Now(),
		})
	}
}

// ensureNotifyTriggers 确保通知函数与各表触发器存在
func (s *EventService) ensureNotifyTriggers() error {
	if err := s.createNotifyFunction(); err != nil {
		return err
	}

	tables := []string{
		models.PredictionRecord{}.TableName(),
		models.AlertRecord{}.TableName(),
	}
	for _, tableName := range tables {
		if err := s.ensureTableTrigger(tableName); err != nil {
			return err
		}
	}
	return nil
}

// ensureTableTrigger 检查指定表的触发器，缺失时创建
func (s *EventService) ensureTableTrigger(tableName string) error {
	triggerName := tableName + "_notify"

	var count int64
	if err := s.db.Raw("SELECT COUNT(*) FROM pg_trigger WHERE tgname = ?", triggerName).Scan(&count).Error; err != nil {
		return fmt.Errorf("查询触发器 %s 失败: %w", triggerName, err)
	}
	if count > 0 {
		log.Printf("表 %s 的触发器 %s 已存在", tableName, triggerName)
		return nil
	}

	log.Printf("表 %s 缺少触发器 %s，正在创建...", tableName, triggerName)
	createTriggerSQL := fmt.Sprintf(`
		CREATE TRIGGER %s
		AFTER INSERT ON %s
		FOR EACH ROW
		EXECUTE FUNCTION notify_burnout_changes();
	`, triggerName, tableName)

	if err := s.db.Exec(createTriggerSQL).Error; err != nil {
		return fmt.Errorf("执行创建触发器SQL失败: %w", err)
	}

	log.Printf("成功创建表 %s 的触发器 %s", tableName, triggerName)
	return nil
}

// createNotifyFunction 创建数据库通知函数
func (s *EventService) createNotifyFunction() error {
	createFunctionSQL := `
CREATE OR REPLACE FUNCTION notify_burnout_changes()
RETURNS TRIGGER AS $$
DECLARE
    payload JSON;
BEGIN
    payload := json_build_object(
        'table', TG_TABLE_NAME,
        'type', TG_OP,
        'record_id', NEW.id,
        'new_data', row_to_json(NEW),
        'timestamp', extract(epoch from now())
    );

    PERFORM pg_notify('burnout_changes', payload::text);

    RETURN NEW;
END;
$$ LANGUAGE plpgsql;`

	if err := s.db.Exec(createFunctionSQL).Error; err != nil {
		return fmt.Errorf("执行创建函数SQL失败: %w", err)
	}

	log.Println("数据库通知函数 notify_burnout_changes() 已创建")
	return nil
}

// === 后台维护 ===

// startMaintenance 定期清理断开的连接与过期的去重键
func (s *EventService) startMaintenance() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupInactiveConnections()
			s.cleanupRecentKeys()
		case <-s.ctx.Done():
			return
		}
	}
}

// cleanupInactiveConnections 清理已断开的连接
func (s *EventService) cleanupInactiveConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for connectionID, client := range s.connections {
		select {
		case <-client.Done:
			delete(s.connections, connectionID)
			log.Printf("清理已断开的连接: 连接ID=%s", connectionID)
		default:
			// 连接仍然活跃
		}
	}
}

// cleanupRecentKeys 清理超出去重窗口的事件键
func (s *EventService) cleanupRecentKeys() {
	s.recentMu.Lock()
	defer s.recentMu.Unlock()

	cutoff := time.Now().Add(-dedupeWindow)
	for key, seenAt := range s.recentKeys {
		if seenAt.Before(cutoff) {
			delete(s.recentKeys, key)
		}
	}
}

// Stop 停止事件服务
func (s *EventService) Stop() {
	s.cancel()

	if s.dbListener != nil {
		s.dbListener.Close()
	}

	// 关闭所有SSE连接
	s.mu.Lock()
	for _, client := range s.connections {
		close(client.Done)
	}
	s.connections = make(map[string]*SSEClient)
	s.mu.Unlock()

	log.Println("事件服务已停止")
}
