package v1

type CreatePlacementGroupRequest struct {
	GroupId string `json:"group_id" binding:"required" example:"pg-1"`
}

type PlacementGroupItem struct {
	GroupId string   `json:"group_id"`
	DiskIds []string `json:"disk_ids"`
}

type ListPlacementGroupsResponseData struct {
	List []PlacementGroupItem `json:"list"`
}

type SetWritableStateRequest struct {
	Writable *bool `json:"writable" binding:"required" example:"true"`
}
