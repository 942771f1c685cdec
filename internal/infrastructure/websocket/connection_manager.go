package websocket

import (
	"sync"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

type ConnectionManager struct {
	connections map[domain.AuctionID]map[string]domain.WebSocketConnection // auctionID -> userID -> connection
	userConns   map[string][]domain.WebSocketConnection                    // userID -> connections
	mutex       sync.RWMutex
	log         logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[domain.AuctionID]map[string]domain.WebSocketConnection),
		userConns:   make(map[string][]domain.WebSocketConnection),
		log:         log,
	}
}

func (cm *ConnectionManager) RegisterConnection(userID string, auctionID domain.AuctionID, conn domain.WebSocketConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	// Register by auction
	if cm.connections[auctionID] == nil {
		cm.connections[auctionID] = make(map[string]domain.WebSocketConnection)
	}
	// A second connection from the same user replaces the first
	if previous, exists := cm.connections[auctionID][userID]; exists {
		cm.removeUserConnection(userID, previous)
		if err := previous.Close(); err != nil {
			cm.log.Warn("Failed to close replaced connection", "user_id", userID, "auction_id", auctionID, "error", err)
		}
	}
	cm.connections[auctionID][userID] = conn

	// Register by user
	cm.userConns[userID] = append(cm.userConns[userID], conn)

	cm.log.Info("Connection registered", "user_id", userID, "auction_id", auctionID)
	return nil
}

// UnregisterConnection removes conn if it is still the one registered for
// the user on that auction; a replaced connection leaves its successor alone.
func (cm *ConnectionManager) UnregisterConnection(userID string, auctionID domain.AuctionID, conn domain.WebSocketConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	// Remove from auction connections
	if auctionConns, exists := cm.connections[auctionID]; exists {
		if current, ok := auctionConns[userID]; ok && current == conn {
			delete(auctionConns, userID)
		}
		if len(auctionConns) == 0 {
			delete(cm.connections, auctionID)
		}
	}

	// Remove from user connections
	cm.removeUserConnection(userID, conn)

	cm.log.Info("Connection unregistered", "user_id", userID, "auction_id", auctionID)
	return nil
}

func (cm *ConnectionManager) CloseAndUnregisterConnections(auctionID domain.AuctionID) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	// Remove from auction connections
	if auctionConns, exists := cm.connections[auctionID]; exists {
		for userID, conn := range auctionConns {
			if err := conn.Close(); err != nil {
				cm.log.Error("Failed to close connection", "user_id", userID,
					"auction_id", auctionID, "error", err)
			} else {
				cm.log.Info("Closed connection", "user_id", userID, "auction_id", auctionID)
			}

			cm.removeUserConnection(userID, conn)
		}
		delete(cm.connections, auctionID)
	}

	cm.log.Info("Connections closed for auction", "auction_id", auctionID)
	return nil
}

func (cm *ConnectionManager) GetConnectionsForAuction(auctionID domain.AuctionID) []domain.WebSocketConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	var connections []domain.WebSocketConnection
	if auctionConns, exists := cm.connections[auctionID]; exists {
		for _, conn := range auctionConns {
			connections = append(connections, conn)
		}
	}

	return connections
}

func (cm *ConnectionManager) GetConnectionsForUser(userID string) []domain.WebSocketConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	if connections, exists := cm.userConns[userID]; exists {
		return append([]domain.WebSocketConnection(nil), connections...)
	}

	return nil
}

func (cm *ConnectionManager) BroadcastToAuction(auctionID domain.AuctionID, message interface{}) error {
	connections := cm.GetConnectionsForAuction(auctionID)
	cm.log.Debug("Broadcasting to auction", "auction_id", auctionID, "connections", len(connections))

	for _, conn := range connections {
		if err := conn.Send(message); err != nil {
			cm.log.Error("Failed to send message", "user_id", conn.UserID(),
				"auction_id", auctionID, "error", err)
			// Continue to other connections
		}
	}

	return nil
}

func (cm *ConnectionManager) NotifyUser(userID string, message interface{}) error {
	connections := cm.GetConnectionsForUser(userID)

	for _, conn := range connections {
		if err := conn.Send(message); err != nil {
			cm.log.Error("Failed to send message", "user_id", userID, "error", err)
		}
	}

	return nil
}

func (cm *ConnectionManager) removeUserConnection(userID string, conn domain.WebSocketConnection) {
	userConnections := cm.userConns[userID]
	var newConns []domain.WebSocketConnection
	for _, existingConn := range userConnections {
		if existingConn != conn {
			newConns = append(newConns, existingConn)
		}
	}

	if len(newConns) == 0 {
		delete(cm.userConns, userID)
	} else {
		cm.userConns[userID] = newConns
	}
}
