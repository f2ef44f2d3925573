// wav2vad 读取WAV文件，逐帧执行语音活动检测并输出时间线
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"

	"vad-engine-golang/internal/domain/vad/inter"
	"vad-engine-golang/internal/domain/vad/monitor"
	"vad-engine-golang/internal/domain/vad/session"
	"vad-engine-golang/internal/domain/vad/webrtc_vad"
)

type printListener struct {
	frameMs int
	frameNo *int
	talking bool
}

func (l *printListener) OnSpeechDetected() {
	if !l.talking {
		l.talking = true
		fmt.Printf("%8.2fs  speech start\n", float64(*l.frameNo*l.frameMs)/1000)
	}
}

func (l *printListener) OnNoiseDetected() {
	if l.talking {
		l.talking = false
		fmt.Printf("%8.2fs  speech end\n", float64(*l.frameNo*l.frameMs)/1000)
	}
}

func main() {
	var (
		wavFile    = flag.String("f", "", "WAV文件路径")
		durationMs = flag.Int("d", 20, "帧时长 (ms)，支持 10/20/30")
		mode       = flag.Int("m", 2, "VAD 敏感度模式 0-3")
		voiceMs    = flag.Int("voice", 100, "判定开始说话的最小语音时长 (ms)")
		silenceMs  = flag.Int("silence", 300, "判定停止说话的最小静音时长 (ms)")
	)
	flag.Parse()

	if *wavFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	samples, sampleRate, err := readWavFile(*wavFile)
	if err != nil {
		fmt.Printf("读取WAV文件失败: %v\n", err)
		os.Exit(1)
	}

	manager := session.NewManager()
	defer manager.Close()

	handle, code := manager.Create(webrtc_vad.EngineConfig{
		SampleRate:      sampleRate,
		FrameDurationMs: *durationMs,
		Mode:            *mode,
	})
	if code != inter.CodeOk {
		fmt.Printf("创建引擎失败: %s (采样率 %d 可能不受支持)\n", code, sampleRate)
		os.Exit(1)
	}
	defer manager.Destroy(handle)

	frameLength, _ := manager.FrameLength(handle)
	fmt.Printf("文件: %s, 采样率: %d Hz, 帧长: %d samples (%dms), 模式: %d\n",
		*wavFile, sampleRate, frameLength, *durationMs, *mode)

	frameNo := 0
	listener := &printListener{frameMs: *durationMs, frameNo: &frameNo}
	debouncer := monitor.New(monitor.Config{
		FrameDurationMs: *durationMs,
		VoiceDuration:   time.Duration(*voiceMs) * time.Millisecond,
		SilenceDuration: time.Duration(*silenceMs) * time.Millisecond,
	}, listener)

	speechFrames := 0
	totalFrames := 0
	for i := 0; i+frameLength <= len(samples); i += frameLength {
		isSpeech, code := manager.Classify(handle, sampleRate, frameLength, samples[i:i+frameLength])
		if code != inter.CodeOk {
			fmt.Printf("分类失败: %s\n", code)
			os.Exit(1)
		}
		debouncer.Feed(isSpeech)
		if isSpeech {
			speechFrames++
		}
		totalFrames++
		frameNo++
	}

	fmt.Printf("共 %d 帧，语音帧 %d (%.1f%%)\n",
		totalFrames, speechFrames, 100*float64(speechFrames)/float64(max(totalFrames, 1)))
}

// readWavFile 解码WAV文件为单声道 int16 采样
func readWavFile(path string) ([]int16, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("无效的WAV文件")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("解码WAV数据失败: %w", err)
	}

	sampleRate := int(buf.Format.SampleRate)
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("无效的声道数: %d", channels)
	}

	// 多声道时只取第一个声道
	samples := make([]int16, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		samples = append(samples, int16(buf.Data[i]))
	}
	return samples, sampleRate, nil
}
