package meshvk

import (
	"testing"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func TestResolveTransitionUploadPath(t *testing.T) {
	masks, err := resolveTransition(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	if err != nil {
		t.Fatalf("undefined->transferDst: %v", err)
	}
	if masks.srcAccess != 0 {
		t.Errorf("srcAccess = %v, want 0", masks.srcAccess)
	}
	if masks.dstAccess != vk.AccessFlags(vk.AccessTransferWriteBit) {
		t.Errorf("dstAccess = %v, want transfer write", masks.dstAccess)
	}
	if masks.srcStage != vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit) {
		t.Errorf("srcStage = %v, want top of pipe", masks.srcStage)
	}
	if masks.dstStage != vk.PipelineStageFlags(vk.PipelineStageTransferBit) {
		t.Errorf("dstStage = %v, want transfer", masks.dstStage)
	}
}

func TestResolveTransitionSamplePath(t *testing.T) {
	masks, err := resolveTransition(vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	if err != nil {
		t.Fatalf("transferDst->shaderReadOnly: %v", err)
	}
	if masks.srcAccess != vk.AccessFlags(vk.AccessTransferWriteBit) {
		t.Errorf("srcAccess = %v, want transfer write", masks.srcAccess)
	}
	if masks.dstAccess != vk.AccessFlags(vk.AccessShaderReadBit) {
		t.Errorf("dstAccess = %v, want shader read", masks.dstAccess)
	}
	if masks.srcStage != vk.PipelineStageFlags(vk.PipelineStageTransferBit) {
		t.Errorf("srcStage = %v, want transfer", masks.srcStage)
	}
	if masks.dstStage != vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit) {
		t.Errorf("dstStage = %v, want fragment shader", masks.dstStage)
	}
}

func TestResolveTransitionRejectsOtherPairs(t *testing.T) {
	pairs := [][2]vk.ImageLayout{
		{vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutTransferDstOptimal},
		{vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal},
		{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutUndefined},
		{vk.ImageLayoutGeneral, vk.ImageLayoutPresentSrc},
	}
	for _, pair := range pairs {
		if _, err := resolveTransition(pair[0], pair[1]); !errors.Is(err, ErrUnsupportedTransition) {
			t.Errorf("resolveTransition(%d, %d) err = %v, want ErrUnsupportedTransition",
				pair[0], pair[1], err)
		}
	}
}

func TestMipLevels(t *testing.T) {
	tests := []struct {
		w, h, want uint32
	}{
		{1, 1, 1},
		{2, 2, 2},
		{512, 512, 10},
		{800, 600, 10},
		{1024, 1, 11},
		{1, 1024, 11},
		{1000, 1000, 10},
	}
	for _, tt := range tests {
		if got := MipLevels(tt.w, tt.h); got != tt.want {
			t.Errorf("MipLevels(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestMipChainHalvesWithFloor(t *testing.T) {
	chain := MipChain(800, 600)
	if len(chain) != 10 {
		t.Fatalf("chain length = %d, want 10", len(chain))
	}
	if chain[0] != [2]int32{800, 600} {
		t.Fatalf("level 0 = %v, want 800x600", chain[0])
	}
	for i := 1; i < len(chain); i++ {
		prev, cur := chain[i-1], chain[i]
		wantW, wantH := mipExtent(prev[0]), mipExtent(prev[1])
		if cur[0] != wantW || cur[1] != wantH {
			t.Errorf("level %d = %v, want %dx%d", i, cur, wantW, wantH)
		}
		if cur[0] < 1 || cur[1] < 1 {
			t.Errorf("level %d = %v, dimension below 1", i, cur)
		}
	}
	last := chain[len(chain)-1]
	if last[0] != 1 {
		t.Errorf("final level width = %d, want 1", last[0])
	}
}
