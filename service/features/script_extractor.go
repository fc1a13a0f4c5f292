/*
 * @module service/features/script_extractor
 * @description 脚本化特征提取器，通过内嵌Go解释器执行用户自定义提取脚本
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 构造时编译脚本 -> 批处理工作器调用Extract -> 解释器内执行脚本函数
 * @rules 脚本必须实现Extract函数体；解释器实例非并发安全，执行时持互斥锁
 * @dependencies github.com/traefik/yaegi, sync, crypto/sha1
 * @refs service/features/extractor.go, service/config/config_manager.go
 */

package features

import (
	"crypto/sha1"
	"fmt"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ScriptExtractor 脚本化特征提取器
// 脚本内容是Extract函数的函数体，入参payload为原始信号载荷，
// 返回值必须是([]float64, error)
type ScriptExtractor struct {
	mutex      sync.Mutex
	hash       string
	compiledAt time.Time
	extractFn  func(map[string]interface{}) ([]float64, error)
}

// NewScriptExtractor 编译脚本并创建提取器
func NewScriptExtractor(script string) (*ScriptExtractor, error) {
	if script == "" {
		return nil, fmt.Errorf("特征提取脚本为空")
	}

	extractFn, err := compileExtractScript(script)
	if err != nil {
		return nil, err
	}

	return &ScriptExtractor{
		hash:       fmt.Sprintf("%x", sha1.Sum([]byte(script))),
		compiledAt: time.Now(),
		extractFn:  extractFn,
	}, nil
}

// Extract 在解释器内执行脚本提取特征
func (e *ScriptExtractor) Extract(rawPayload map[string]interface{}) ([]float64, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.extractFn(rawPayload)
}

// Hash 脚本内容指纹，用于状态接口展示
func (e *ScriptExtractor) Hash() string {
	return e.hash
}

// ValidateExtractScript 仅校验脚本语法与签名，不保留解释器
func ValidateExtractScript(script string) error {
	_, err := compileExtractScript(script)
	return err
}

// compileExtractScript 编译脚本为可执行的提取函数
func compileExtractScript(script string) (func(map[string]interface{}) ([]float64, error), error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库符号失败: %v", err)
	}

	// 包装脚本：脚本内容作为 Extract 函数的函数体
	wrapped := fmt.Sprintf(`
package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// 必须提供一个 Extract 函数作为入口
func Extract(payload map[string]interface{}) ([]float64, error) {
	// 脚本内容
%s
}
`, script)

	if _, err := i.Eval(wrapped); err != nil {
		return nil, fmt.Errorf("特征脚本编译失败: %v", err)
	}

	v, err := i.Eval("Extract")
	if err != nil {
		return nil, fmt.Errorf("特征脚本缺少 Extract 函数: %v", err)
	}

	extractFn, ok := v.Interface().(func(map[string]interface{}) ([]float64, error))
	if !ok {
		return nil, fmt.Errorf("Extract 函数签名必须是 func(map[string]interface{}) ([]float64, error)")
	}
	return extractFn, nil
}
