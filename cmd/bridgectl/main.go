// bridgectl 是健康研究平台 SDK 的命令行客户端。
//
// 用法:
//
//	bridgectl [全局选项] <命令>
//
// 全局选项:
//
//	-c, --config   设置文件路径（.yaml/.yml/.json，可选）
//	-e, --env      部署环境覆盖 (local/develop/staging/production)
//	-t, --timeout  命令超时时间 (默认: 30s)
//
// 命令:
//
//	signin         登录并输出会话摘要，用于验证凭据
//	whoami         输出当前账号的参与者记录
//	studies        列出可见的研究项目
//	timeline       输出活动日程
//	signout        登出并废弃服务端会话
//
// 凭据来源：设置文件与环境变量（STUDY_IDENTIFIER / ACCOUNT_EMAIL /
// ACCOUNT_PASSWORD / LANGUAGES / SDK_ENVIRONMENT），环境变量优先。
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败
//	2: 参数/配置错误
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/bridgekit/pkg/client/xbridge"
	"github.com/omeyang/bridgekit/pkg/config/xsdkconf"
)

// defaultTimeout 默认命令超时时间。
const defaultTimeout = 30 * time.Second

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "bridgectl",
		Usage:   "健康研究平台 SDK 命令行客户端",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "设置文件路径",
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "部署环境覆盖",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "命令超时时间",
				Value:   defaultTimeout,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, xbridge.ErrInvalidConfiguration) {
			fmt.Fprintf(os.Stderr, "配置错误: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// loadManager 从设置文件与环境变量组装 Manager。
func loadManager(cmd *cli.Command) (*xbridge.Manager, error) {
	var (
		settings *xsdkconf.Settings
		err      error
	)
	if path := cmd.String("config"); path != "" {
		settings, err = xsdkconf.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", xbridge.ErrInvalidConfiguration, err)
		}
	} else {
		settings = xsdkconf.FromEnv()
	}

	if env := cmd.String("env"); env != "" {
		settings.Environment = env
	}

	return xbridge.NewManager(settings)
}
