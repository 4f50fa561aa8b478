// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 目前只有管理介面使用的 JWT 身份驗證，
// 之後如有日誌記錄、限流等跨請求的功能也放在這裡。
package middleware
