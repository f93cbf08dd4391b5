//go:build !mobile

package utils

import "os"

// IsMobile 检测当前是否在移动设备上运行
// 桌面端编译时返回 false；设置 SNOWFALL_MOBILE_EMULATE=1 可在桌面上模拟
// 触摸操作（点击暂停/恢复发射）。
func IsMobile() bool {
	return os.Getenv("SNOWFALL_MOBILE_EMULATE") == "1"
}
