/*
 * @module service/features/transcode
 * @description 旧版采集端GBK编码载荷的转码支持
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 特征提取时发现GBK字段 -> 解码为UTF-8 -> 参与关键词匹配
 * @rules JSON载荷中的字节字段以base64形式传输，先解base64再做GBK转码
 * @dependencies encoding/base64, golang.org/x/text/encoding/simplifiedchinese, golang.org/x/text/transform
 * @refs service/features/extractor.go
 */

package features

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// DecodeGBK GBK字节序列解码为UTF-8字符串
func DecodeGBK(data []byte) (string, error) {
	decoder := simplifiedchinese.GBK.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("GBK解码失败: %v", err)
	}
	return string(result), nil
}

// EncodeGBK UTF-8字符串编码为GBK字节序列
func EncodeGBK(text string) ([]byte, error) {
	encoder := simplifiedchinese.GBK.NewEncoder()
	result, _, err := transform.Bytes(encoder, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("GBK编码失败: %v", err)
	}
	return result, nil
}

// DecodeGBKValue 解析载荷字段中的GBK内容
// 字节切片直接转码；字符串按base64字节处理，解码失败时按原始字节转码
func DecodeGBKValue(value interface{}) (string, error) {
	switch typed := value.(type) {
	case []byte:
		return DecodeGBK(typed)
	case string:
		if raw, err := base64.StdEncoding.DecodeString(typed); err == nil {
			return DecodeGBK(raw)
		}
		return DecodeGBK([]byte(typed))
	default:
		return "", fmt.Errorf("不支持的GBK字段类型 %T", value)
	}
}
