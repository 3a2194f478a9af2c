package sqlite

import "sync"

// Notifier 在每次写操作之后向订阅者广播表变更信号，
// 替代原系统中数据库引擎自带的响应式查询。
// 信号通道容量为 1：订阅者只需要知道"有变化"，不需要每次变化各一条。
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscriber
}

type subscriber struct {
	tables map[string]struct{}
	ch     chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]*subscriber)}
}

// Subscribe 订阅给定表的变更。返回信号通道和取消函数；
// 取消函数幂等，调用后监听者被移除、通道被关闭，不会泄漏。
func (n *Notifier) Subscribe(tables ...string) (<-chan struct{}, func()) {
	sub := &subscriber{
		tables: make(map[string]struct{}, len(tables)),
		ch:     make(chan struct{}, 1),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = sub
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			// 移除之后不会再有发送，关闭让监听循环退出
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Notify 广播给定表发生了变更；对未就绪的订阅者不阻塞
func (n *Notifier) Notify(tables ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs {
		for _, t := range tables {
			if _, ok := sub.tables[t]; ok {
				select {
				case sub.ch <- struct{}{}:
				default:
				}
				break
			}
		}
	}
}
