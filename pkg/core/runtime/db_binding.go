package runtime

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DBBinding 暴露给提交代码的三个DB原语（对外导出）
// 按调用作用域构造并注入，不走进程级全局变量，避免跨请求串扰
type DBBinding struct {
	db *sqlx.DB
}

// NewDBBinding 创建DB绑定
func NewDBBinding(db *sqlx.DB) *DBBinding {
	return &DBBinding{db: db}
}

// QueryMany 查询多行，返回行map列表
// 在JS侧以db.queryMany(sql, params)暴露
func (b *DBBinding) QueryMany(query string, params []any) ([]map[string]any, error) {
	if b.db == nil {
		return nil, fmt.Errorf("database is not available")
	}

	rows, err := b.db.Queryx(b.db.Rebind(query), params...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var result []map[string]any
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row failed: %w", err)
		}
		result = append(result, normalizeRow(row))
	}
	if result == nil {
		result = []map[string]any{}
	}
	return result, rows.Err()
}

// QueryOne 查询单行，无结果时返回null
func (b *DBBinding) QueryOne(query string, params []any) (map[string]any, error) {
	rows, err := b.QueryMany(query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Execute 执行写语句，返回{changes, lastInsertId}
func (b *DBBinding) Execute(query string, params []any) (map[string]any, error) {
	if b.db == nil {
		return nil, fmt.Errorf("database is not available")
	}

	res, err := b.db.Exec(b.db.Rebind(query), params...)
	if err != nil {
		return nil, fmt.Errorf("execute failed: %w", err)
	}

	changes, _ := res.RowsAffected()
	// 部分驱动（postgres）不支持LastInsertId，取不到就置0
	lastID, err := res.LastInsertId()
	if err != nil {
		lastID = 0
	}

	return map[string]any{
		"changes":      changes,
		"lastInsertId": lastID,
	}, nil
}

// normalizeRow 驱动返回的[]byte列统一转成string，保证JSON可序列化
func normalizeRow(row map[string]any) map[string]any {
	for key, value := range row {
		if b, ok := value.([]byte); ok {
			row[key] = string(b)
		}
	}
	return row
}
