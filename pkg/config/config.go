package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Game   GameConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

// GameConfig 控制遊戲各階段的時間限制與轉場延遲（單位：秒）
type GameConfig struct {
	QuestionSeconds   int // 每題作答時間
	VotingSeconds     int // 投票階段時間
	NextQuestionDelay int // 題與題之間的延遲
	RoundStartDelay   int // 回合開場畫面的延遲
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	// 遊戲節奏的預設值，設定檔可以覆蓋
	viper.SetDefault("game.questionseconds", 30)
	viper.SetDefault("game.votingseconds", 30)
	viper.SetDefault("game.nextquestiondelay", 3)
	viper.SetDefault("game.roundstartdelay", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
