/**
 * JSON 序列化器
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 把装配完成的记录序列写成一个 JSON 数组。
 *               文件输出先写临时路径再重命名，失败不留下会被误认为完整的半成品。
 */
package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"neovector/internal/core/model"
)

// Marshal 序列化记录数组
// pretty 控制缩进，键顺序由结构体字段顺序固定；空序列产出 []
func Marshal(records []model.Record, pretty bool) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSerialization, err)
	}
	return data, nil
}

// Write 把记录数组写到任意输出 (stdout 场景)
func Write(w io.Writer, records []model.Record, pretty bool) error {
	data, err := Marshal(records, pretty)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", model.ErrSerialization, err)
	}
	return nil
}

// WriteFile 原子写文件：完整缓冲后写临时路径，成功再重命名就位
func WriteFile(path string, records []model.Record, pretty bool) error {
	data, err := Marshal(records, pretty)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrSerialization, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename to %s: %v", model.ErrSerialization, path, err)
	}
	return nil
}
