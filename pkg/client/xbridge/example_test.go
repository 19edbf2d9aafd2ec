package xbridge_test

import (
	"context"
	"fmt"
	"log"

	"github.com/omeyang/bridgekit/pkg/client/xbridge"
	"github.com/omeyang/bridgekit/pkg/config/xsdkconf"
)

func ExampleNewManager() {
	// 从设置创建 Manager
	manager, err := xbridge.NewManager(&xsdkconf.Settings{
		Study:       "sleep-study",
		Email:       "researcher@example.com",
		Password:    "secret",
		Environment: "staging",
		Languages:   []string{"en", "fr"},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer manager.Close()

	fmt.Println(manager.HostURL())
	// Output: https://ws-staging.bridgekit.org
}

func ExampleManager_GetClient() {
	manager, err := xbridge.NewManager(&xsdkconf.Settings{
		Study:    "sleep-study",
		Email:    "researcher@example.com",
		Password: "secret",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer manager.Close()

	ctx := context.Background()

	// 获取参与者服务句柄；相同服务类型的重复获取返回同一实例
	participants, err := xbridge.As[*xbridge.ParticipantService](manager.GetClient(xbridge.ServiceParticipants))
	if err != nil {
		log.Fatal(err)
	}

	// 首次调用自动登录，会话被拒时透明刷新并重放一次
	record, err := participants.Self(ctx)
	if err != nil {
		log.Printf("get self failed: %v", err)
		return
	}
	_ = record
}

func ExampleNewProvider() {
	// 多凭据场景直接使用 Provider
	provider, err := xbridge.NewProvider(&xbridge.Config{
		BaseURL:         "https://ws.bridgekit.org",
		AcceptLanguages: []string{"en"},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer provider.Close()

	cred, err := xbridge.NewCredential("sleep-study", "a@example.com", "pw")
	if err != nil {
		log.Fatal(err)
	}

	studies, err := xbridge.As[*xbridge.StudyService](provider.ClientFor(xbridge.ServiceStudies, cred))
	if err != nil {
		log.Fatal(err)
	}
	_ = studies
	fmt.Println("client ready")
	// Output: client ready
}

func ExampleRetryTransient() {
	provider, err := xbridge.NewProvider(&xbridge.Config{BaseURL: "https://ws.bridgekit.org"})
	if err != nil {
		log.Fatal(err)
	}
	defer provider.Close()

	cred, err := xbridge.NewCredential("sleep-study", "a@example.com", "pw")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// 瞬态错误的重试是调用方的显式决定，库内部不会自动套用
	err = xbridge.RetryTransient(ctx, xbridge.DefaultRetryPolicy(), func(ctx context.Context) error {
		svc, err := xbridge.As[*xbridge.ScheduleService](provider.ClientFor(xbridge.ServiceSchedules, cred))
		if err != nil {
			return err
		}
		_, err = svc.Timeline(ctx)
		return err
	})
	if err != nil {
		log.Printf("timeline failed: %v", err)
	}
}
