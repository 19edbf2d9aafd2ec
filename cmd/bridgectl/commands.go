package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/bridgekit/pkg/client/xbridge"
)

// createCommands 创建命令列表。
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "signin",
			Usage:  "登录并输出会话摘要，用于验证凭据",
			Action: runSignIn,
		},
		{
			Name:   "whoami",
			Usage:  "输出当前账号的参与者记录",
			Action: runWhoami,
		},
		{
			Name:   "studies",
			Usage:  "列出可见的研究项目",
			Action: runStudies,
		},
		{
			Name:   "timeline",
			Usage:  "输出活动日程",
			Action: runTimeline,
		},
		{
			Name:   "signout",
			Usage:  "登出并废弃服务端会话",
			Action: runSignOut,
		},
	}
}

// withManager 组装 Manager 并在命令超时内执行 fn。
func withManager(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, m *xbridge.Manager) error) error {
	m, err := loadManager(cmd)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck // 进程即将退出

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()
	return fn(ctx, m)
}

func runSignIn(ctx context.Context, cmd *cli.Command) error {
	return withManager(ctx, cmd, func(ctx context.Context, m *xbridge.Manager) error {
		store, err := m.Provider().SessionStore(m.Credential())
		if err != nil {
			return err
		}
		sess, err := store.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("环境:   %s\n", m.Environment())
		fmt.Printf("账号:   %s\n", sess.Email)
		fmt.Printf("认证:   %v\n", sess.Authenticated)
		fmt.Printf("获取于: %s\n", sess.ObtainedAt.Format("2006-01-02 15:04:05"))
		return nil
	})
}

func runWhoami(ctx context.Context, cmd *cli.Command) error {
	return withManager(ctx, cmd, func(ctx context.Context, m *xbridge.Manager) error {
		svc, err := xbridge.As[*xbridge.ParticipantService](m.GetClient(xbridge.ServiceParticipants))
		if err != nil {
			return err
		}
		record, err := svc.Self(ctx)
		if err != nil {
			return err
		}
		return writeRaw(record)
	})
}

func runStudies(ctx context.Context, cmd *cli.Command) error {
	return withManager(ctx, cmd, func(ctx context.Context, m *xbridge.Manager) error {
		svc, err := xbridge.As[*xbridge.StudyService](m.GetClient(xbridge.ServiceStudies))
		if err != nil {
			return err
		}
		list, err := svc.List(ctx)
		if err != nil {
			return err
		}
		return writeRaw(list)
	})
}

func runTimeline(ctx context.Context, cmd *cli.Command) error {
	return withManager(ctx, cmd, func(ctx context.Context, m *xbridge.Manager) error {
		svc, err := xbridge.As[*xbridge.ScheduleService](m.GetClient(xbridge.ServiceSchedules))
		if err != nil {
			return err
		}
		timeline, err := svc.Timeline(ctx)
		if err != nil {
			return err
		}
		return writeRaw(timeline)
	})
}

func runSignOut(ctx context.Context, cmd *cli.Command) error {
	return withManager(ctx, cmd, func(ctx context.Context, m *xbridge.Manager) error {
		if err := m.SignOut(ctx); err != nil {
			return err
		}
		fmt.Println("已登出")
		return nil
	})
}

// writeRaw 原样输出服务端 JSON 负载。
func writeRaw(payload []byte) error {
	_, err := os.Stdout.Write(append(payload, '\n'))
	return err
}
