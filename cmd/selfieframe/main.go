package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/engine"
	"github.com/ivlev/selfieframe/internal/export"
	"github.com/ivlev/selfieframe/internal/overlay"
	"github.com/ivlev/selfieframe/internal/script"
	"github.com/ivlev/selfieframe/internal/share"
	"github.com/ivlev/selfieframe/internal/source"
	"github.com/ivlev/selfieframe/internal/system"
)

// buildVersion is set with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

func main() {
	// Создаем нужные директории, если их нет
	dirs := []string{"input/overlay", script.DefaultDir, "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	configPtr := flag.String("config", "", "Путь к YAML-конфигурации (поверх пресета)")
	presetPtr := flag.String("preset", "", "Пресет: classic (16:9, 1280x720), hd (1920x1080)")
	cameraPtr := flag.String("camera", "", "Камера: mock, images, gst")
	framesPtr := flag.String("frames", "", "Папка с кадрами для камеры images")
	devicePtr := flag.String("device", "", "Устройство для камеры gst (например, /dev/video0)")
	overlayPtr := flag.String("overlay", "", "Путь к рамке PNG/WebP (по умолчанию: самый свежий файл в input/overlay/)")
	scriptPtr := flag.String("script", "", "Сценарий YAML; \"latest\" - самый свежий в input/scripts/, пусто - команды со stdin")
	outputPtr := flag.String("output", "", "Папка для экспорта")
	namePtr := flag.String("name", "", "Имя файла экспорта (png, jpg, tif, bmp, gif)")
	anchorPtr := flag.Bool("anchor", false, "Ставить снимок в центр прозрачного окна рамки")
	detectorPtr := flag.String("detector", "", "Детектор окна рамки: alpha, luma")
	qrURLPtr := flag.String("qr-url", "", "Ссылка для QR-кода, который сохраняется рядом с экспортом")
	qrSizePtr := flag.Int("qr-size", 0, "Размер QR-кода в пикселях")
	statsPtr := flag.Bool("stats", false, "Печатать отчет о производительности")
	writeConfigPtr := flag.String("write-config", "", "Сохранить итоговую конфигурацию в файл и выйти")

	flag.Parse()

	cfg, err := loadConfig(*configPtr, *presetPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	if *cameraPtr != "" {
		cfg.Camera.Kind = *cameraPtr
	}
	if *framesPtr != "" {
		cfg.Camera.FramesDir = *framesPtr
	}
	if *devicePtr != "" {
		cfg.Camera.Device = *devicePtr
	}
	if *overlayPtr != "" {
		cfg.OverlayPath = *overlayPtr
	}
	if *outputPtr != "" {
		cfg.OutputDir = *outputPtr
	}
	if *namePtr != "" {
		cfg.ExportName = *namePtr
	}
	if *anchorPtr {
		cfg.AnchorToWindow = true
	}
	if *detectorPtr != "" {
		cfg.WindowDetector = *detectorPtr
	}
	if *qrURLPtr != "" {
		cfg.ShareURL = *qrURLPtr
	}
	if *qrSizePtr > 0 {
		cfg.QRSize = *qrSizePtr
	}
	if *statsPtr {
		cfg.ShowStats = true
	}
	cfg.BuildVersion = buildVersion

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	if *writeConfigPtr != "" {
		if err := config.Write(cfg, *writeConfigPtr); err != nil {
			log.Fatalf("[-] Не удалось сохранить конфигурацию: %v", err)
		}
		fmt.Printf("[+] Конфигурация сохранена: %s\n", *writeConfigPtr)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overlayPath := cfg.OverlayPath
	if overlayPath == "" {
		latest, err := system.FindLatestOverlay("input/overlay")
		if err != nil {
			log.Printf("[!] Рамка не найдена (%v), снимок будет без рамки", err)
		}
		overlayPath = latest
	}
	var ov *overlay.Overlay
	if overlayPath != "" {
		fmt.Printf("[*] Выбрана рамка: %s\n", overlayPath)
		ov = overlay.Load(ctx, overlayPath)
	}

	cam, err := engine.NewCamera(cfg.Camera)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации камеры: %v", err)
	}

	files := export.NewFileSink(cfg.OutputDir)
	sink := export.FallbackSink{
		Primary:   files,
		Secondary: export.NewFileSink(filepath.Join(os.TempDir(), "selfieframe")),
	}

	booth, err := engine.NewBooth(cfg, cam, sink, ov)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации: %v", err)
	}

	fmt.Printf("[*] Сессия %s, холст %dx%d, камера %s\n", booth.Session.ID, cfg.OutputWidth, cfg.OutputHeight, cfg.Camera.Kind)

	err = booth.Run(ctx, func(ctx context.Context) error {
		if *scriptPtr != "" {
			return replayScript(ctx, booth, *scriptPtr)
		}
		return interactive(ctx, booth)
	})

	if cfg.ShowStats {
		booth.Report()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		var acq *source.AcquisitionError
		if errors.As(err, &acq) {
			log.Fatalf("[-] Камера недоступна: %v. Подсказка: %s", err, acq.Reason.Hint())
		}
		log.Fatalf("[-] Ошибка сессии: %v", err)
	}

	if path := files.LastPath(); path != "" {
		fmt.Printf("[+++] Успех! Результат: %s\n", path)
		if cfg.ShareURL != "" {
			qrPath := filepath.Join(cfg.OutputDir, "share_qr.png")
			if err := share.WriteQR(qrPath, cfg.ShareURL, cfg.QRSize); err != nil {
				log.Printf("[!] Не удалось создать QR-код: %v", err)
			} else {
				fmt.Printf("[+] QR-код: %s\n", qrPath)
			}
		}
	}
}

func loadConfig(path, preset string) (config.Config, error) {
	if path == "" {
		return config.Preset(preset)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if preset != "" && !strings.EqualFold(preset, cfg.Preset) {
		log.Printf("[!] -preset %s игнорируется, используется пресет из %s (%s)", preset, path, cfg.Preset)
	}
	return cfg, nil
}

func replayScript(ctx context.Context, booth *engine.Booth, path string) error {
	if path == "latest" {
		latest, err := script.FindLatest(script.DefaultDir)
		if err != nil {
			return err
		}
		path = latest
	}
	fmt.Printf("[*] Выбран сценарий: %s\n", path)

	s, err := script.ReadScript(path)
	if err != nil {
		return err
	}
	return booth.Replay(ctx, s)
}

// interactive reads one command per line from stdin until EOF or "quit".
func interactive(ctx context.Context, booth *engine.Booth) error {
	fmt.Println("[*] Команды: start, capture, press/move <id> <x> <y>, release <id>, wheel <dy> [n], export [name], reset, stop, quit")

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Print("> ")
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		st, err := script.ParseCommand(line)
		if err != nil {
			fmt.Printf("[-] %v\n", err)
			continue
		}
		err = booth.Apply(ctx, st)
		var acq *source.AcquisitionError
		switch {
		case err == nil:
		case errors.As(err, &acq):
			fmt.Printf("[-] Камера недоступна: %s. Подсказка: %s\n", acq.Reason, acq.Reason.Hint())
		case engine.Refused(err):
			fmt.Printf("[-] Действие недоступно: %v\n", err)
		default:
			fmt.Printf("[-] %v\n", err)
		}
	}
}
