package dao

const (
	// CollectionAccount 存储账号信息的表。
	CollectionAccount = "accounts"
	// CollectionAccountToken 存储已登录用户的表。
	CollectionAccountToken = "account_token"

	// CollectionInterview 面试会话表，题目与作答内嵌其中。
	CollectionInterview = "interviews"

	// CollectionQuestionBank 静态题库，AI出题失败时的兜底来源。
	CollectionQuestionBank = "question_bank"

	// CollectionReport 报告元数据表，PDF本体在对象存储。
	CollectionReport = "reports"

	// CollectionPaymentOrder 套餐升级的支付订单表。
	CollectionPaymentOrder = "payment_orders"
)
