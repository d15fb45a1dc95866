package storage

// Dialect 数据库方言接口（对外导出）
// 抹平各后端在DDL与连接配置上的差异，SQL占位符统一用?并由sqlx.Rebind转换
type Dialect interface {
	// Name 返回方言名称
	Name() string
	// DriverName 返回database/sql驱动名
	DriverName() string
	// CreateTableSQL 返回建表DDL列表
	CreateTableSQL() []string
	// ConfigureDB 返回连接级配置SQL
	ConfigureDB() []string
}
