// Package service 實作問答遊戲的核心邏輯。
//
// 一場遊戲對應一個 Room，房間的所有變動（玩家加入、作答、投票、
// 管理員指令、計時器觸發）都以房間自己的鎖序列化；不同房間彼此
// 獨立，可以並行處理。計時器是狀態機唯一的非同步入口，每個房間
// 同時最多只有一個存活的計時器，排定新回呼時一定先取消舊的。
//
// WebSocketManager 只負責連線進出與訊息收發，遊戲規則都在
// GameService 裡。
package service
