package pricing

import "errors"

var (
	// ErrAlreadyUpdated is a soft refusal: the price was fetched today and
	// the caller did not force a refresh.
	ErrAlreadyUpdated = errors.New("price already updated today")
	// ErrStale means every source failed and the cached price is served.
	ErrStale = errors.New("all price sources failed, serving cached price")
	// ErrNoData means every source failed and nothing is cached.
	ErrNoData = errors.New("all price sources failed, no cached price")
)

// User-facing advisories.
const (
	AdvisoryAlreadyUpdated = "今日已更新，确认重新获取？"
	AdvisoryStale          = "网络连接超时，显示缓存数据。建议检查网络设置后重试"
	AdvisoryOffline        = "网络连接失败，请检查网络设置。可能原因：1)WiFi/蜂窝网络问题 2)API服务暂时不可用"
	AdvisorySourcesDown    = "网络连通性正常，但金价数据源暂时不可用，请稍后重试"
)

const (
	SourceNone    = "无数据"
	SourceFailure = "网络异常"
)
