package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"zuhaoku/bootstrap"
	btsConfig "zuhaoku/config"
	"zuhaoku/pkg/app"
	"zuhaoku/pkg/config"
	"zuhaoku/pkg/redis"
	"zuhaoku/routes"
)

func init() {
	// 加载 config 目录下的配置信息
	btsConfig.Initialize()
}

// App 持有需要优雅关闭的组件
type App struct {
	server     *http.Server
	reconciler *bootstrap.Reconciler
}

func main() {
	env, reconcileOnly := parseFlags()

	svc, err := setupApplication(env)
	if err != nil {
		log.Fatalf("初始化应用程序失败: %v", err)
	}
	defer redis.Close()

	// 只执行一次对账，用于运维补偿
	if reconcileOnly {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := bootstrap.ReconcileOnce(ctx, svc.Lease); err != nil {
			log.Fatalf("对账失败: %v", err)
		}
		return
	}

	reconciler, err := bootstrap.SetupQueue(svc.Lease)
	if err != nil {
		log.Fatalf("初始化对账服务失败: %v", err)
	}

	a := &App{
		server: &http.Server{
			Addr:              ":" + config.Get("app.port"),
			Handler:           setupServer(svc),
			ReadHeaderTimeout: 10 * time.Second,
		},
		reconciler: reconciler,
	}
	a.start()
}

func parseFlags() (env string, reconcileOnly bool) {
	flag.StringVar(&env, "env", "", "加载 .env 文件，例如 --env=testing 将加载 .env.testing 文件")
	flag.BoolVar(&reconcileOnly, "reconcile", false, "扫描并执行一次对账后退出")
	flag.Parse()
	return env, reconcileOnly
}

// setupApplication 按顺序初始化配置、日志、数据库、Redis 和业务服务
func setupApplication(env string) (routes.Services, error) {
	config.InitConfig(env)
	bootstrap.SetupLogger()

	if err := bootstrap.SetupDB(); err != nil {
		return routes.Services{}, err
	}
	if err := bootstrap.SetupRedis(); err != nil {
		return routes.Services{}, err
	}
	return bootstrap.SetupServices(context.Background())
}

func setupServer(svc routes.Services) *gin.Engine {
	if !app.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	bootstrap.SetupRoute(router, svc)
	return router
}

// start 启动 HTTP 服务和对账服务，收到退出信号后依次关闭
func (a *App) start() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.reconciler.Start()

	go func() {
		log.Printf("服务器正在启动，监听端口 %s\n", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	<-quit
	log.Println("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Printf("服务器关闭异常: %v", err)
	}
	a.reconciler.Stop()

	log.Println("服务器已成功关闭")
}
