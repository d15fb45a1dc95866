package worker

import (
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/LENAX/function-engine/pkg/config"
	jsruntime "github.com/LENAX/function-engine/pkg/core/runtime"
	"github.com/LENAX/function-engine/pkg/storage"
)

// dbPool Worker自有的数据库连接池（内部使用）
// 首次执行时懒初始化；初始化失败的调用以backend_unavailable收场，下次调用重新尝试
type dbPool struct {
	cfg    *config.Config
	db     *sqlx.DB
	logger zerolog.Logger
	mu     sync.Mutex
}

func newDBPool(cfg *config.Config, logger zerolog.Logger) *dbPool {
	return &dbPool{cfg: cfg, logger: logger}
}

// ensure 懒初始化连接池，失败后立即重试一次
// 与宿主读同一份配置，两侧必然落在同一个逻辑数据库
func (p *dbPool) ensure() (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}

	dbCfg := &p.cfg.FunctionEngine.Storage.Database
	opts := storage.PoolOptions{
		MaxOpenConns:    dbCfg.MaxOpenConns,
		MaxIdleConns:    dbCfg.MaxIdleConns,
		ConnMaxLifetime: dbCfg.ConnMaxLifetime,
	}

	db, _, err := storage.Open(dbCfg.Type, dbCfg.DSN, opts)
	if err != nil {
		p.logger.Warn().Err(err).Msg("database bootstrap failed, retrying once")
		time.Sleep(200 * time.Millisecond)
		db, _, err = storage.Open(dbCfg.Type, dbCfg.DSN, opts)
		if err != nil {
			return nil, fmt.Errorf("database bootstrap failed: %w", err)
		}
	}

	p.logger.Info().Str("type", dbCfg.Type).Msg("worker database pool initialized")
	p.db = db
	return db, nil
}

// close 释放连接池
func (p *dbPool) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// bindAsyncDB 把三个DB原语以Promise形式绑定到vm
// 绑定按调用作用域构造，不经过进程级全局变量
func bindAsyncDB(vm *goja.Runtime, loop *eventloop.EventLoop, db *sqlx.DB) {
	sync := jsruntime.NewDBBinding(db)

	obj := vm.NewObject()
	obj.Set("queryMany", asyncPrimitive(vm, loop, func(query string, params []any) (any, error) {
		return sync.QueryMany(query, params)
	}))
	obj.Set("queryOne", asyncPrimitive(vm, loop, func(query string, params []any) (any, error) {
		row, err := sync.QueryOne(query, params)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		return row, nil
	}))
	obj.Set("execute", asyncPrimitive(vm, loop, func(query string, params []any) (any, error) {
		return sync.Execute(query, params)
	}))
	vm.Set("db", obj)
}

// asyncPrimitive 将同步DB操作包装为返回Promise的JS函数
// 查询在独立goroutine执行，结果经RunOnLoop回到事件循环线程settle
func asyncPrimitive(vm *goja.Runtime, loop *eventloop.EventLoop, fn func(string, []any) (any, error)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		query := call.Argument(0).String()

		var params []any
		if arg := call.Argument(1); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
			_ = vm.ExportTo(arg, &params)
		}

		promise, resolve, reject := vm.NewPromise()
		go func() {
			result, err := fn(query, params)
			loop.RunOnLoop(func(*goja.Runtime) {
				if err != nil {
					reject(vm.NewGoError(err))
					return
				}
				resolve(vm.ToValue(result))
			})
		}()
		return vm.ToValue(promise)
	}
}
