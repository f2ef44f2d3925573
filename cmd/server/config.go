package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"vad-engine-golang/logger"
)

func Init(configFile string) error {
	//init config
	if err := initConfig(configFile); err != nil {
		fmt.Printf("initConfig err: %+v\n", err)
		os.Exit(1)
		return err
	}

	//init log
	return initLog()
}

func initConfig(configFile string) error {
	basePath, file := filepath.Split(configFile)

	// 获取文件名和扩展名
	fileName, fileExt := func(file string) (string, string) {
		if pos := strings.LastIndex(file, "."); pos != -1 {
			return file[:pos], strings.ToLower(file[pos+1:])
		}
		return file, ""
	}(file)

	// 设置配置文件名(不带扩展名)
	viper.SetConfigName(fileName)
	viper.AddConfigPath(basePath)

	// 根据文件扩展名设置配置类型
	switch fileExt {
	case "json":
		viper.SetConfigType("json")
	case "yaml", "yml":
		viper.SetConfigType("yaml")
	default:
		return fmt.Errorf("unsupported config file type: %s", fileExt)
	}

	return viper.ReadInConfig()
}

func initLog() error {
	// 输出到文件
	binPath, _ := os.Executable()
	baseDir := filepath.Dir(binPath)
	logPath := fmt.Sprintf("%s/%s%s", baseDir, viper.GetString("log.path"), viper.GetString("log.file"))

	// 日志按天轮转，保留 log.max_age 个历史文件
	writer, err := rotatelogs.New(
		logPath+".%Y%m%d",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithRotationCount(uint(viper.GetInt("log.max_age"))),
		rotatelogs.WithRotationTime(time.Duration(86400)*time.Second),
	)
	if err != nil {
		fmt.Printf("init log error: %v\n", err)
		os.Exit(1)
		return err
	}

	// 根据配置决定输出目标
	if viper.GetBool("log.stdout") {
		multiWriter := io.MultiWriter(writer, os.Stdout)
		logrus.SetOutput(multiWriter)
		logrus.SetFormatter(logger.Formatter(true))
	} else {
		logrus.SetOutput(writer)
		logrus.SetFormatter(logger.Formatter(false))
	}

	// 使用自定义的caller字段，禁用默认的调用者报告
	logrus.SetReportCaller(false)
	logLevel, err := logrus.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	return nil
}
