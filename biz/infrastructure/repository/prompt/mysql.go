package prompt

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"scorewise/biz/infrastructure/util/log"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLMapper struct {
	db *sql.DB
}

// Prompt 对应数据库中的 Prompts 表
type Prompt struct {
	ID          int     `db:"id"`
	ExamKind    string  `db:"exam_kind"`
	Title       *string `db:"title"`
	Description *string `db:"description"`
	Genre       *string `db:"genre"`
}

func NewMySQLMapper(dsn string) (*MySQLMapper, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	log.Info("MySQL connection established successfully")
	return &MySQLMapper{db: db}, nil
}

func (m *MySQLMapper) Close() error {
	return m.db.Close()
}

// FindOne 按id获取题目
func (m *MySQLMapper) FindOne(ctx context.Context, id int) (*Prompt, error) {
	var p Prompt
	err := m.db.QueryRowContext(ctx,
		"SELECT id, exam_kind, title, description, genre FROM Prompts WHERE id = ?", id,
	).Scan(&p.ID, &p.ExamKind, &p.Title, &p.Description, &p.Genre)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt %d: %w", id, err)
	}
	return &p, nil
}

// ListPrompts 获取题目列表
func (m *MySQLMapper) ListPrompts(ctx context.Context, examKind string, page, limit int64) ([]*Prompt, int64, error) {
	// 构建查询条件
	var conditions []string
	var args []interface{}

	if examKind != "" {
		conditions = append(conditions, "exam_kind = ?")
		args = append(args, examKind)
	}

	// 构建 WHERE 子句
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// 获取总数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM Prompts %s", whereClause)
	var total int64
	err := m.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		log.Error("Failed to count prompts: %v", err)
		return nil, 0, fmt.Errorf("failed to count prompts: %w", err)
	}

	offset := (page - 1) * limit

	// 查询数据
	dataQuery := fmt.Sprintf(`
		SELECT id, exam_kind, title, description, genre
		FROM Prompts %s
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`, whereClause)

	args = append(args, limit, offset)

	rows, err := m.db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		log.Error("Failed to query prompts: %v", err)
		return nil, 0, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	var prompts []*Prompt
	for rows.Next() {
		var p Prompt
		err := rows.Scan(&p.ID, &p.ExamKind, &p.Title, &p.Description, &p.Genre)
		if err != nil {
			log.Error("Failed to scan prompt row: %v", err)
			continue
		}
		prompts = append(prompts, &p)
	}

	if err = rows.Err(); err != nil {
		log.Error("Error iterating over rows: %v", err)
		return nil, 0, fmt.Errorf("error iterating over rows: %w", err)
	}

	return prompts, total, nil
}

// SafeString 安全地将 *string 转换为 string
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
